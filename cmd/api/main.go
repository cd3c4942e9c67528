package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abhishekprajapati1/clavel-assignment/internal/cache"
	"github.com/abhishekprajapati1/clavel-assignment/internal/config"
	"github.com/abhishekprajapati1/clavel-assignment/internal/database"
	"github.com/abhishekprajapati1/clavel-assignment/internal/handlers"
	"github.com/abhishekprajapati1/clavel-assignment/internal/jobs"
	"github.com/abhishekprajapati1/clavel-assignment/internal/log"
	"github.com/abhishekprajapati1/clavel-assignment/internal/payment"
	"github.com/abhishekprajapati1/clavel-assignment/internal/queue"
	"github.com/abhishekprajapati1/clavel-assignment/internal/repository"
	"github.com/abhishekprajapati1/clavel-assignment/internal/security"
	"github.com/abhishekprajapati1/clavel-assignment/internal/server"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.NewWithLevel(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal().Err(err).Msg("database migration failed")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	users := repository.NewUserRepository(dbPool)
	sessions := repository.NewSessionRepository(dbPool)
	payments := repository.NewPaymentRepository(dbPool)

	hasher := security.NewPasswordHasher(security.Argon2Params{
		Time:    cfg.Security.Argon2Time,
		Memory:  cfg.Security.Argon2Memory,
		Threads: cfg.Security.Argon2Threads,
	})
	tokens := security.NewTokenCodec(cfg.Security.JWTAccessSecret, cfg.Security.JWTRefreshSecret)

	outbox := queue.NewOutbox(queue.NewProducer(redisClient, cfg.Queue.NotificationStream), cfg.FrontendURL)
	paymentJobs := queue.NewPaymentJobs(queue.NewProducer(redisClient, cfg.Queue.PaymentStream))

	if cfg.Payment.StripeSecretKey == "" {
		logger.Warn().Msg("stripe secret key not configured, checkout calls will fail")
	}
	stripeProvider := payment.NewStripeProvider(cfg.Payment.StripeSecretKey, cfg.Payment.WebhookSecret)

	authService := service.NewAuthService(
		users,
		sessions,
		hasher,
		tokens,
		outbox,
		cache.NewTokenLedger(redisClient),
		cfg.Security,
		logger.With().Str("component", "auth").Logger(),
	)
	paymentService := service.NewPaymentService(
		users,
		payments,
		stripeProvider,
		stripeProvider,
		paymentJobs,
		cfg.Payment,
		cfg.FrontendURL,
		logger.With().Str("component", "payment").Logger(),
	)

	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}

	limiter := cache.NewRateLimiter(redisClient, "rl", cfg.Security.RateLimit, cfg.Security.RateWindow)

	handlerSet := handlers.NewHandlerSet(logger, cfg, authService, paymentService, limiter,
		handlers.HealthCheck{Name: "postgres", Ping: dbPool.Ping},
		handlers.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(authService, cfg.Jobs.SessionRetention, logger.With().Str("component", "jobs").Logger())
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
