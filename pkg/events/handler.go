package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationEvent 捐赠生命周期事件
type DonationEvent struct {
	DonationID string          `json:"donation_id"`
	OrderID    string          `json:"order_id"`
	PaymentID  string          `json:"payment_id,omitempty"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	CauseTitle string          `json:"cause_title,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type EventHandler interface {
	OnDonationCompleted(event *DonationEvent) error
	OnDonationFailed(event *DonationEvent) error
	OnDonationRefunded(event *DonationEvent) error
}

var handler EventHandler

func SetEventHandler(h EventHandler) {
	handler = h
}

func EmitDonationCompleted(event *DonationEvent) error {
	if handler != nil {
		return handler.OnDonationCompleted(event)
	}
	return nil
}

func EmitDonationFailed(event *DonationEvent) error {
	if handler != nil {
		return handler.OnDonationFailed(event)
	}
	return nil
}

func EmitDonationRefunded(event *DonationEvent) error {
	if handler != nil {
		return handler.OnDonationRefunded(event)
	}
	return nil
}
