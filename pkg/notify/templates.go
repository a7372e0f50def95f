package notify

import (
	"fmt"

	"github.com/alphaseam/donorbox/pkg/models"
)

// statusTemplate 每个状态对应的邮件文案
// 文案差异全部集中在这张表里，渲染逻辑只有一份
type statusTemplate struct {
	Color         string // 状态展示色
	StatusMessage string // 面向捐赠人的状态说明
	DonorSubject  string
	DonorHeading  string
	OrgSubject    string // fmt格式串: currency, amount, donorName
	OrgHeading    string
}

var statusTemplates = map[models.DonationStatus]statusTemplate{
	models.StatusCompleted: {
		Color:         "#28a745",
		StatusMessage: "We are delighted to confirm that your donation has been successfully received.",
		DonorSubject:  "Your Donation is Complete - Thank You!",
		DonorHeading:  "Donation Confirmed - Thank You!",
		OrgSubject:    "New Donation: %s %s Received!",
		OrgHeading:    "New Donation Received!",
	},
	models.StatusPending: {
		Color:         "#ffc107",
		StatusMessage: "Your donation is currently pending. We will notify you once the payment is confirmed.",
		DonorSubject:  "Your Donation is Pending - Action Required?",
		DonorHeading:  "Your Donation is Pending",
		OrgSubject:    "Pending Donation: %s %s from %s",
		OrgHeading:    "New Pending Donation",
	},
	models.StatusFailed: {
		Color:         "#dc3545",
		StatusMessage: "Unfortunately, your donation could not be processed. Please try again or contact support.",
		DonorSubject:  "Action Required: Your Donation Failed",
		DonorHeading:  "Donation Unsuccessful",
		OrgSubject:    "Failed Donation: %s %s from %s",
		OrgHeading:    "Donation Attempt Failed",
	},
	models.StatusRefunded: {
		Color:         "#17a2b8",
		StatusMessage: "Your donation has been refunded. For further details, please contact support.",
		DonorSubject:  "Your Donation Has Been Refunded",
		DonorHeading:  "Donation Refunded",
		OrgSubject:    "Donation Refunded: %s %s from %s",
		OrgHeading:    "Donation Refunded",
	},
}

var defaultTemplate = statusTemplate{
	Color:         "#6c757d",
	StatusMessage: "Your donation status is currently unknown. Please contact support for more information.",
	DonorSubject:  "Update on Your Donation",
	DonorHeading:  "Update on Your Donation",
	OrgSubject:    "Donation Status Update: %s %s from %s",
	OrgHeading:    "Donation Status Update",
}

func templateFor(status models.DonationStatus) statusTemplate {
	if t, ok := statusTemplates[status]; ok {
		return t
	}
	return defaultTemplate
}

const dateLayout = "Jan 02, 2006 15:04"

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// DonorEmail 渲染捐赠人邮件
func DonorEmail(d *models.Donation) (subject, html string) {
	t := templateFor(d.Status)

	html = fmt.Sprintf(`<html>
<body style='font-family: Arial, sans-serif; line-height: 1.6; color: #333;'>
<div style='max-width: 600px; margin: 0 auto; padding: 20px;'>
    <h1 style='color: #2c5aa0; text-align: center;'>%s</h1>
    <p>Dear %s,</p>
    <p>%s</p>
    <div style='background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;'>
        <h3 style='margin-top: 0; color: #2c5aa0;'>Donation Details:</h3>
        <p><strong>Amount:</strong> %s %s</p>
        <p><strong>Cause:</strong> %s</p>
        <p><strong>Donation ID:</strong> %s</p>
        <p><strong>Date:</strong> %s</p>
        <p><strong>Phone:</strong> %s</p>
        <p><strong>Status:</strong> <span style='color: %s;'>%s</span></p>
    </div>
    <p>Your generous contribution will make a real difference in supporting our cause.
    We will keep you updated on how your donation is being used.</p>
    <p>With heartfelt gratitude,<br>The Donorbox Team</p>
</div>
</body>
</html>`,
		t.DonorHeading,
		d.DonorName,
		t.StatusMessage,
		d.Currency, d.Amount.StringFixed(2),
		d.CauseTitle(),
		d.ID,
		d.CreatedAt.Format(dateLayout),
		orDefault(d.DonorPhone, "Not provided"),
		t.Color,
		d.Status,
	)

	return t.DonorSubject, html
}

// OperatorEmail 渲染运营方邮件，比捐赠人邮件多出联系方式和留言
func OperatorEmail(d *models.Donation) (subject, html string) {
	t := templateFor(d.Status)

	subject = fmt.Sprintf(t.OrgSubject, d.Currency, d.Amount.StringFixed(2), d.DonorName)

	html = fmt.Sprintf(`<html>
<body style='font-family: Arial, sans-serif; line-height: 1.6; color: #333;'>
<div style='max-width: 600px; margin: 0 auto; padding: 20px;'>
    <h1 style='color: #2c5aa0; text-align: center;'>%s</h1>
    <p>A donation has been processed through the Donorbox platform with the following status:</p>
    <div style='background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;'>
        <h3 style='margin-top: 0; color: #2c5aa0;'>Donation Details:</h3>
        <p><strong>Donor Name:</strong> %s</p>
        <p><strong>Donor Email:</strong> %s</p>
        <p><strong>Donor Phone:</strong> %s</p>
        <p><strong>Amount:</strong> %s %s</p>
        <p><strong>Cause:</strong> %s</p>
        <p><strong>Donation ID:</strong> %s</p>
        <p><strong>Date:</strong> %s</p>
        <p><strong>Status:</strong> <span style='color: %s;'>%s</span></p>
        <p><strong>Message:</strong> %s</p>
    </div>
    <p>Please log into the admin dashboard to view more details and manage this donation.</p>
    <p>Best regards,<br>Donorbox System</p>
</div>
</body>
</html>`,
		t.OrgHeading,
		d.DonorName,
		d.DonorEmail,
		orDefault(d.DonorPhone, "Not provided"),
		d.Currency, d.Amount.StringFixed(2),
		d.CauseTitle(),
		d.ID,
		d.CreatedAt.Format(dateLayout),
		t.Color,
		d.Status,
		orDefault(d.Message, "No message provided"),
	)

	return subject, html
}

// FollowupEmail 渲染follow-up提醒邮件
func FollowupEmail(d *models.Donation) (subject, html string) {
	subject = "Reminder: Your Donation is Still Pending"

	html = fmt.Sprintf(`<html>
<body style='font-family: Arial, sans-serif; line-height: 1.6; color: #333;'>
<div style='max-width: 600px; margin: 0 auto; padding: 20px;'>
    <h1 style='color: #2c5aa0; text-align: center;'>Your Donation is Still Pending</h1>
    <p>Dear %s,</p>
    <p>Your donation of <strong>%s %s</strong> towards <strong>%s</strong> has not been completed yet.
    If you started a payment and it did not go through, you can try again at any time.</p>
    <div style='background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;'>
        <p><strong>Donation ID:</strong> %s</p>
        <p><strong>Date:</strong> %s</p>
    </div>
    <p>If you have already completed the payment, no action is needed - the confirmation
    can take a little while to reach us.</p>
    <p>With heartfelt gratitude,<br>The Donorbox Team</p>
</div>
</body>
</html>`,
		d.DonorName,
		d.Currency, d.Amount.StringFixed(2),
		d.CauseTitle(),
		d.ID,
		d.CreatedAt.Format(dateLayout),
	)

	return subject, html
}
