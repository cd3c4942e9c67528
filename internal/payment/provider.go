// Package payment talks to the checkout provider.
package payment

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type CheckoutStatus string

const (
	CheckoutOpen     CheckoutStatus = "open"
	CheckoutComplete CheckoutStatus = "complete"
	CheckoutExpired  CheckoutStatus = "expired"
)

type PaymentStatus string

const (
	PaymentPaid              PaymentStatus = "paid"
	PaymentUnpaid            PaymentStatus = "unpaid"
	PaymentNoPaymentRequired PaymentStatus = "no_payment_required"
)

type CheckoutSession struct {
	ID            string
	URL           string
	UserID        string
	Status        CheckoutStatus
	PaymentStatus PaymentStatus
	AmountTotal   int64
	Currency      string
	CustomerID    string
}

// Paid reports whether the session settled. Free checkouts count as paid.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentPaid || s.PaymentStatus == PaymentNoPaymentRequired
}

// CheckoutRequest describes a one-time purchase. CustomerID reuses a known
// provider customer instead of creating one from Email.
type CheckoutRequest struct {
	UserID             string
	Email              string
	CustomerID         string
	AmountCents        int64
	Currency           string
	ProductName        string
	ProductDescription string
	SuccessURL         string
	CancelURL          string
}

type Provider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetCheckout(ctx context.Context, id string) (CheckoutSession, error)
}

type EventType string

const (
	EventCheckoutCompleted     EventType = "checkout.session.completed"
	EventAsyncPaymentSucceeded EventType = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    EventType = "checkout.session.async_payment_failed"
	EventCheckoutExpired       EventType = "checkout.session.expired"
)

type Event struct {
	ID      string
	Type    EventType
	Session CheckoutSession
}

type WebhookVerifier interface {
	ParseEvent(payload []byte, signature string) (Event, error)
}
