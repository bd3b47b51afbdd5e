package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stone-realestate/leadops/internal/config"
	"github.com/stone-realestate/leadops/internal/infra/database"
	"github.com/stone-realestate/leadops/internal/infra/http/handlers"
	"github.com/stone-realestate/leadops/internal/infra/http/middleware"
	"github.com/stone-realestate/leadops/internal/infra/integration/backend"
	"github.com/stone-realestate/leadops/internal/infra/mail"
	"github.com/stone-realestate/leadops/internal/infra/queue"
	"github.com/stone-realestate/leadops/internal/infra/session"
	"github.com/stone-realestate/leadops/internal/infra/worker"
	"github.com/stone-realestate/leadops/internal/logging"
	"github.com/stone-realestate/leadops/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, "leadops-api")
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Sessions
	redisClient := session.NewRedisClient(session.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer redisClient.Close()
	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL, logger)
	if err := sessions.Ping(ctx); err != nil {
		return err
	}

	checks := map[string]handlers.Pinger{"redis": sessions, "database": nil, "rabbitmq": nil}

	// 2. Optional audit trail
	var audit usecase.AuditRecorder
	var auditReader handlers.AuditReader
	if cfg.DatabaseURL != "" {
		db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := database.NewAuditRepository(db, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		audit, auditReader = repo, repo
		checks["database"] = handlers.PingFunc(db.PingContext)
	} else {
		logger.Warn("DATABASE_URL not set, audit trail disabled")
	}

	// 3. Optional events and welcome e-mails
	var events usecase.EventPublisher
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		events = queue.NewProducer(rabbitMQ.Ch, logger)
		checks["rabbitmq"] = handlers.PingFunc(func(context.Context) error {
			if rabbitMQ.Conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		})

		if cfg.MailEnabled() {
			sender := mail.NewEmailSender(mail.Config{
				Host:     cfg.MailHost,
				Port:     cfg.MailPort,
				User:     cfg.MailUser,
				Password: cfg.MailPass,
				From:     cfg.MailFrom,
				LoginURL: cfg.MailLoginURL,
			}, logger)
			welcome := queue.NewWorker(rabbitMQ.Ch, sender, logger)
			go func() {
				if err := welcome.Start(ctx); err != nil {
					logger.Error("welcome worker stopped", zap.Error(err))
				}
			}()
		}
	} else {
		logger.Warn("RABBITMQ_URL not set, events disabled")
	}

	// 4. Backend gateway and use cases
	recorder := middleware.Recorder{}
	client := backend.NewClient(backend.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout}, recorder, logger)

	workspaces := usecase.NewWorkspaces(
		func(token string) usecase.Backend { return client.WithToken(token) },
		usecase.WorkspaceConfig{
			FetchPageSize:  cfg.FetchPageSize,
			MessageTimeout: cfg.MessageFetchTimeout,
			Events:         events,
			Audit:          audit,
			Recorder:       recorder,
			Logger:         logger,
		},
	)
	auth := usecase.NewAuthService(client, sessions, workspaces, logger)
	capture := usecase.NewCaptureService(client, logger)

	janitor := worker.NewWorkspaceJanitor(sessions, workspaces, cfg.JanitorInterval, logger)
	go janitor.Start(ctx)

	limiter := handlers.NewRateLimiter(cfg.CaptureRateLimit, time.Minute)
	go limiter.Run(ctx, 10*time.Minute)

	// 5. Router
	router := newRouter(routes{
		allowedOrigins: cfg.AllowedOrigins,
		sessions:       auth,
		health:         handlers.NewHealthHandler(checks, cfg.APIBaseURL),
		auth:           handlers.NewAuthHandler(auth, cfg.SecureCookies, cfg.SessionTTL, logger),
		capture:        handlers.NewCaptureHandler(capture, limiter, logger),
		leads:          handlers.NewLeadHandler(workspaces, auth, cfg.ViewPageSize, auditReader, logger),
		admins:         handlers.NewAdminHandler(workspaces, auth, logger),
		messages:       handlers.NewMessageHandler(workspaces, auth, logger),
		logger:         logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
