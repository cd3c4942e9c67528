package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/queue"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
)

// PaymentConfirmer is satisfied by *service.PaymentService.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, checkoutID, expectedUserID string) (service.PaymentResult, error)
}

type Processor struct {
	payments PaymentConfirmer
	logger   zerolog.Logger
}

type TaskPayload struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

func NewProcessor(payments PaymentConfirmer, logger zerolog.Logger) *Processor {
	return &Processor{
		payments: payments,
		logger:   logger,
	}
}

// Handle returns an error only for outcomes worth retrying; the consumer
// leaves those entries pending and re-claims them later.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		p.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping undecodable task")
		return nil
	}

	switch payload.Type {
	case queue.TaskConfirmPayment:
		return p.handleConfirm(ctx, msg.ID, payload)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleConfirm(ctx context.Context, messageID string, payload TaskPayload) error {
	log := p.logger.With().
		Str("message_id", messageID).
		Str("checkout_id", payload.SessionID).
		Str("user_id", payload.UserID).
		Logger()

	result, err := p.payments.Confirm(ctx, payload.SessionID, payload.UserID)
	switch {
	case err == nil:
		log.Info().Bool("already_premium", result.AlreadyPremium).Msg("payment confirmed")
		return nil
	case errors.Is(err, apperr.ErrPaymentPending):
		log.Debug().Err(err).Msg("payment still pending")
		return fmt.Errorf("confirm %s: %w", payload.SessionID, err)
	case errors.Is(err, apperr.ErrPaymentFailed),
		errors.Is(err, apperr.ErrCheckoutMissing),
		errors.Is(err, apperr.ErrUserNotFound):
		log.Warn().Err(err).Msg("payment will not complete, dropping task")
		return nil
	}

	if ae := apperr.As(err); ae != nil && ae.Kind != apperr.KindInternal {
		log.Warn().Err(err).Msg("dropping task")
		return nil
	}
	return fmt.Errorf("confirm %s: %w", payload.SessionID, err)
}
