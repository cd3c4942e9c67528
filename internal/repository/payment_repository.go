package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Record inserts the audit row for a checkout session. A second record for
// the same session is ignored and reported as inserted=false.
func (r *PaymentRepository) Record(ctx context.Context, payment models.Payment) (bool, error) {
	const query = `
		INSERT INTO payments (session_id, user_id, amount_total, currency, status, created_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		ON CONFLICT (session_id) DO NOTHING
	`
	cmd, err := r.pool.Exec(ctx, query,
		payment.SessionID,
		payment.UserID,
		payment.AmountTotal,
		payment.Currency,
		payment.Status,
		payment.ConfirmedAt,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *PaymentRepository) GetBySession(ctx context.Context, sessionID string) (models.Payment, error) {
	const query = `
		SELECT session_id, user_id, amount_total, currency, status, created_at, confirmed_at
		FROM payments WHERE session_id = $1
	`
	var p models.Payment
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&p.SessionID,
		&p.UserID,
		&p.AmountTotal,
		&p.Currency,
		&p.Status,
		&p.CreatedAt,
		&p.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Payment{}, ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	return p, nil
}
