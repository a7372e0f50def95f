package reports

import (
	"fmt"
	"io"

	"github.com/alphaseam/donorbox/pkg/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Donations"

var headerRow = []interface{}{
	"Donation ID", "Donor Name", "Donor Email", "Donor Phone",
	"Amount", "Currency", "Cause", "Status",
	"Order ID", "Payment ID", "Followups", "Created At",
}

// WriteDonationLedger 把捐赠台账写成xlsx
func WriteDonationLedger(w io.Writer, donations []models.Donation) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return err
	}

	for i := range donations {
		d := donations[i]
		row := []interface{}{
			d.ID, d.DonorName, d.DonorEmail, d.DonorPhone,
			d.Amount.StringFixed(2), d.Currency, d.CauseTitle(), string(d.Status),
			d.OrderID, d.PaymentID, d.FollowupEmailCount, d.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write donation ledger: %w", err)
	}
	return nil
}
