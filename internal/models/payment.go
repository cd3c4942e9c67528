package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is the audit row written when a checkout session is confirmed.
type Payment struct {
	SessionID   string
	UserID      string
	AmountTotal int64
	Currency    string
	Status      PaymentStatus
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}
