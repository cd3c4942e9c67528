package service

import (
	"context"
	"time"

	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, int, error)
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role models.UserRole) error
	SetStripeCustomer(ctx context.Context, id, customerID string) error
	ActivatePremium(ctx context.Context, id string, at time.Time) (time.Time, bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	Touch(ctx context.Context, sessionID string, ip string) error
	Revoke(ctx context.Context, sessionID string) error
	RevokeForUser(ctx context.Context, userID, sessionID string) error
	RevokeAll(ctx context.Context, userID string) (int64, error)
	Stats(ctx context.Context, userID string) (models.SessionStats, error)
	ExpireIdle(ctx context.Context, before time.Time) (int64, error)
	PurgeInactive(ctx context.Context, before time.Time) (int64, error)
}

type PaymentStore interface {
	Record(ctx context.Context, payment models.Payment) (bool, error)
	GetBySession(ctx context.Context, sessionID string) (models.Payment, error)
}

// Notifier delivers one-time links to users. Delivery is asynchronous.
type Notifier interface {
	SendVerification(ctx context.Context, email, name, token string) error
	SendPasswordReset(ctx context.Context, email, name, token string) error
}

// TokenLedger burns single-use token ids. Release undoes a Consume whose
// operation did not complete.
type TokenLedger interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, jti string) error
}

type ConfirmQueue interface {
	EnqueueConfirm(ctx context.Context, checkoutID, userID string) error
}
