package errors

import "github.com/flaboy/pin/usererrors"

// Donation相关错误
var (
	ErrDonationNotFound     = usererrors.New("donation.not_found", "Donation not found")
	ErrCauseNotFound        = usererrors.New("donation.cause_not_found", "Cause not found")
	ErrCurrencyNotSupported = usererrors.New("donation.currency_not_supported", "Currency not supported")
	ErrInvalidAmount        = usererrors.New("donation.invalid_amount", "Donation amount must be positive")
	ErrOrderAlreadyCreated  = usererrors.New("donation.order_already_created", "Gateway order already created for this donation")
)

// Payment相关错误
var (
	ErrOrderNotFound        = usererrors.New("payment.order_not_found", "Gateway order not found")
	ErrChannelNotFound      = usererrors.New("payment.channel_not_found", "Payment channel not found")
	ErrOrderCreationFailed  = usererrors.New("payment.order_creation_failed", "Failed to create gateway order")
	ErrSignatureVerifyError = usererrors.New("payment.signature_invalid", "Payment signature verification failed")
)
