package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/owedhq/owed/internal"
	"github.com/owedhq/owed/internal/email"
	"github.com/owedhq/owed/internal/handler"
	"github.com/owedhq/owed/internal/handler/webhook"
	"github.com/owedhq/owed/internal/ledger"
	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/router"
	"github.com/owedhq/owed/internal/routes"
	"github.com/owedhq/owed/internal/service"
	"github.com/owedhq/owed/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Sentry error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Enabled:     cfg.Sentry.Enabled,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryCleanup()

	// database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// pgx pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	repo := repository.New(pool)
	txRunner := service.NewPgxTxRunner(pool, repo)

	// Prometheus registry with process and runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(registry)

	// Xero client
	xero := ledger.NewXeroClient(cfg.Ledger.ClientID, cfg.Ledger.ClientSecret, cfg.Ledger.RedirectURI)

	// Outbound email
	var sender email.Sender
	switch cfg.Email.Provider {
	case "smtp":
		sender = email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     int(cfg.Email.SMTPPort),
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
	default:
		sender = email.NewResendSender(cfg.Email.ResendAPIKey)
	}
	logger.Info("Email sender initialized", "provider", cfg.Email.Provider)

	// Services
	tokenService := service.NewTokenService(repo, xero, metrics, logger)
	syncService := service.NewSyncService(repo, txRunner, tokenService, xero, metrics, logger)
	chaseService := service.NewChaseService(service.ChaseServiceParams{
		Repo:     repo,
		Tx:       txRunner,
		Sender:   sender,
		Metrics:  metrics,
		Logger:   logger,
		BaseURL:  cfg.BaseURL,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	})
	digestService := service.NewDigestService(repo, sender, metrics, logger, cfg.Email.From, cfg.Email.FromName)
	invoiceService := service.NewInvoiceService(repo, syncService, logger)
	connectionService := service.NewConnectionService(repo, xero, xero, syncService, logger)
	subscriptionService := service.NewSubscriptionService(repo, logger)

	// Router with global middleware
	r := router.New(
		router.Recovery(logger),
		router.Logger(logger),
		telemetry.SentryMiddleware(),
	)

	routes.Register(r, routes.Deps{
		Invoices:       handler.NewInvoiceHandler(invoiceService),
		Connections:    handler.NewConnectionHandler(connectionService, cfg.Env == "prod"),
		Cron:           handler.NewCronHandler(syncService, chaseService, digestService),
		Stats:          handler.NewStatsHandler(repo),
		Unsubscribe:    handler.NewUnsubscribeHandler(invoiceService),
		StripeWebhook:  webhook.NewStripeHandler(subscriptionService, metrics, logger, cfg.Stripe.WebhookSecret),
		ResendWebhook:  webhook.NewResendHandler(invoiceService, metrics, logger),
		CronSecret:     cfg.CronSecret,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
