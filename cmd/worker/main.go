package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhishekprajapati1/clavel-assignment/internal/cache"
	"github.com/abhishekprajapati1/clavel-assignment/internal/config"
	"github.com/abhishekprajapati1/clavel-assignment/internal/database"
	"github.com/abhishekprajapati1/clavel-assignment/internal/log"
	"github.com/abhishekprajapati1/clavel-assignment/internal/payment"
	"github.com/abhishekprajapati1/clavel-assignment/internal/queue"
	"github.com/abhishekprajapati1/clavel-assignment/internal/repository"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
	"github.com/abhishekprajapati1/clavel-assignment/internal/tasks"
)

// The worker polls pending checkouts so premium is granted even when the
// webhook never arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.NewWithLevel(cfg.Environment, cfg.LogLevel).With().Str("service", "worker").Logger()

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	stripeProvider := payment.NewStripeProvider(cfg.Payment.StripeSecretKey, cfg.Payment.WebhookSecret)
	payments := service.NewPaymentService(
		repository.NewUserRepository(dbPool),
		repository.NewPaymentRepository(dbPool),
		stripeProvider,
		stripeProvider,
		nil,
		cfg.Payment,
		cfg.FrontendURL,
		logger,
	)

	processor := tasks.NewProcessor(payments, logger)
	consumer := queue.NewConsumer(
		client,
		queue.ConsumerOptions{
			Stream:        cfg.Queue.PaymentStream,
			Group:         cfg.Queue.Group,
			Consumer:      cfg.Queue.Consumer,
			ClaimInterval: cfg.Queue.ClaimInterval,
			MaxDeliveries: cfg.Queue.MaxDeliveries,
		},
		logger,
		processor,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
