package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhishekprajapati1/clavel-assignment/internal/access"
	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/config"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
	"github.com/abhishekprajapati1/clavel-assignment/internal/payment"
	"github.com/abhishekprajapati1/clavel-assignment/internal/repository"
)

type PaymentService struct {
	users       UserStore
	payments    PaymentStore
	provider    payment.Provider
	webhooks    payment.WebhookVerifier
	queue       ConfirmQueue
	cfg         config.PaymentConfig
	frontendURL string
	log         zerolog.Logger
	now         func() time.Time
}

func NewPaymentService(
	users UserStore,
	payments PaymentStore,
	provider payment.Provider,
	webhooks payment.WebhookVerifier,
	queue ConfirmQueue,
	cfg config.PaymentConfig,
	frontendURL string,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		users:       users,
		payments:    payments,
		provider:    provider,
		webhooks:    webhooks,
		queue:       queue,
		cfg:         cfg,
		frontendURL: frontendURL,
		log:         log,
		now:         time.Now,
	}
}

type CheckoutResult struct {
	SessionID   string
	CheckoutURL string
}

func (s *PaymentService) CreateCheckout(ctx context.Context, user models.User) (CheckoutResult, error) {
	if user.IsPremium {
		return CheckoutResult{}, apperr.ErrAlreadyPremium
	}

	req := payment.CheckoutRequest{
		UserID:             user.ID,
		Email:              user.Email,
		AmountCents:        s.cfg.AmountCents,
		Currency:           s.cfg.Currency,
		ProductName:        s.cfg.ProductName,
		ProductDescription: s.cfg.ProductDescription,
		SuccessURL:         s.frontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          s.frontendURL + "/payment/cancel",
	}
	if user.StripeCustomerID != nil {
		req.CustomerID = *user.StripeCustomerID
	}

	session, err := s.provider.CreateCheckout(ctx, req)
	if err != nil {
		return CheckoutResult{}, apperr.ErrProviderFailure.Wrap(err)
	}

	if s.queue != nil {
		if err := s.queue.EnqueueConfirm(ctx, session.ID, user.ID); err != nil {
			s.log.Warn().Err(err).Str("checkout_id", session.ID).Msg("enqueue confirm poll failed, relying on webhook")
		}
	}

	s.log.Info().Str("user_id", user.ID).Str("checkout_id", session.ID).Msg("checkout session created")
	return CheckoutResult{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

type PaymentResult struct {
	SessionID      string
	UserID         string
	AlreadyPremium bool
	ActivatedAt    time.Time
	Access         access.Info
}

// Confirm upgrades the checkout's owner once the provider reports it paid.
// Confirming an already applied session is a successful no-op. When
// expectedUserID is set, sessions owned by anyone else are reported as not
// found.
func (s *PaymentService) Confirm(ctx context.Context, checkoutID, expectedUserID string) (PaymentResult, error) {
	if checkoutID == "" {
		return PaymentResult{}, apperr.ErrCheckoutMissing
	}

	if res, ok, err := s.recorded(ctx, checkoutID, expectedUserID); err != nil || ok {
		return res, err
	}

	session, err := s.provider.GetCheckout(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return PaymentResult{}, apperr.ErrCheckoutMissing
		}
		return PaymentResult{}, apperr.ErrPaymentPending.Wrap(err)
	}
	if session.UserID == "" || (expectedUserID != "" && session.UserID != expectedUserID) {
		return PaymentResult{}, apperr.ErrCheckoutMissing
	}

	if !session.Paid() {
		if session.Status == payment.CheckoutOpen {
			return PaymentResult{}, apperr.ErrPaymentPending
		}
		return PaymentResult{}, apperr.ErrPaymentFailed
	}

	now := s.now()
	activatedAt, activated, err := s.users.ActivatePremium(ctx, session.UserID, now)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return PaymentResult{}, apperr.ErrUserNotFound
		}
		return PaymentResult{}, err
	}

	if _, err := s.payments.Record(ctx, models.Payment{
		SessionID:   session.ID,
		UserID:      session.UserID,
		AmountTotal: session.AmountTotal,
		Currency:    session.Currency,
		Status:      models.PaymentStatusPaid,
		ConfirmedAt: &now,
	}); err != nil {
		return PaymentResult{}, err
	}

	if session.CustomerID != "" {
		if err := s.users.SetStripeCustomer(ctx, session.UserID, session.CustomerID); err != nil {
			s.log.Warn().Err(err).Str("user_id", session.UserID).Msg("store stripe customer failed")
		}
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return PaymentResult{}, err
	}

	if activated {
		s.log.Info().Str("user_id", user.ID).Str("checkout_id", session.ID).Msg("premium activated")
	}
	return PaymentResult{
		SessionID:      session.ID,
		UserID:         user.ID,
		AlreadyPremium: !activated,
		ActivatedAt:    activatedAt,
		Access:         access.ForUser(user),
	}, nil
}

// recorded answers a confirm for a session that was already applied without
// asking the provider again.
func (s *PaymentService) recorded(ctx context.Context, checkoutID, expectedUserID string) (PaymentResult, bool, error) {
	rec, err := s.payments.GetBySession(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return PaymentResult{}, false, nil
		}
		return PaymentResult{}, false, err
	}
	if expectedUserID != "" && rec.UserID != expectedUserID {
		return PaymentResult{}, false, apperr.ErrCheckoutMissing
	}

	user, err := s.users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return PaymentResult{}, false, apperr.ErrUserNotFound
		}
		return PaymentResult{}, false, err
	}
	if !user.IsPremium || user.PremiumActivatedAt == nil {
		return PaymentResult{}, false, nil
	}

	return PaymentResult{
		SessionID:      rec.SessionID,
		UserID:         user.ID,
		AlreadyPremium: true,
		ActivatedAt:    *user.PremiumActivatedAt,
		Access:         access.ForUser(user),
	}, true, nil
}

// HandleWebhook verifies and applies a provider event. Events that can never
// succeed are logged and swallowed so the provider stops redelivering them.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.webhooks.ParseEvent(payload, signature)
	if err != nil {
		return apperr.ErrWebhookInvalid.Wrap(err)
	}

	logger := s.log.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()

	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventAsyncPaymentSucceeded:
		_, err := s.Confirm(ctx, event.Session.ID, "")
		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperr.ErrPaymentFailed):
			// delayed methods complete unpaid and settle via async_payment_succeeded
			logger.Info().Str("checkout_id", event.Session.ID).Msg("payment not settled yet")
			return nil
		case errors.Is(err, apperr.ErrCheckoutMissing), errors.Is(err, apperr.ErrUserNotFound):
			logger.Warn().Err(err).Str("checkout_id", event.Session.ID).Msg("webhook checkout not applied")
			return nil
		default:
			return err
		}
	case payment.EventAsyncPaymentFailed, payment.EventCheckoutExpired:
		logger.Info().Str("checkout_id", event.Session.ID).Str("user_id", event.Session.UserID).Msg("checkout did not complete")
	default:
		logger.Debug().Msg("webhook event ignored")
	}
	return nil
}

func (s *PaymentService) AccessInfo(ctx context.Context, userID string) (access.Info, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return access.Info{}, apperr.ErrUserNotFound
		}
		return access.Info{}, err
	}
	return access.ForUser(user), nil
}
