package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workorders/internal/broker"
	"workorders/internal/config"
	"workorders/internal/database"
	"workorders/internal/handler"
	"workorders/internal/logger"
	"workorders/internal/mailer"
	"workorders/internal/repository"
	"workorders/internal/service"
	"workorders/internal/worker"
)

type publisher interface {
	worker.Publisher
	Close() error
}

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Env)

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate DB schema", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	codeRepo := repository.NewAccessCodeRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	// Services
	var codeMailer service.CodeMailer
	if cfg.SMTP.Host != "" {
		codeMailer = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	notificationSvc := service.NewNotificationService(notificationRepo)
	orderSvc := service.NewOrderService(orderRepo, userRepo, notificationSvc)
	svc := handler.Services{
		Auth:          service.NewAuthService(userRepo),
		Orders:        orderSvc,
		Users:         service.NewUserService(userRepo, orderSvc),
		Metrics:       service.NewMetricsService(orderSvc),
		Notifications: notificationSvc,
		Codes:         service.NewAccessCodeService(codeRepo, codeMailer),
		Groups:        service.NewGroupService(groupRepo),
	}

	// Workers
	var pub publisher = broker.LogPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			slog.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		pub = kp
	}
	defer func() {
		if err := pub.Close(); err != nil {
			slog.Error("failed to close publisher", "error", err)
		}
	}()
	sweepWorker := worker.NewSweepWorker(orderSvc, cfg.SweepInterval)
	outboxWorker := worker.NewOutboxWorker(notificationRepo, pub, cfg.OutboxInterval, cfg.OutboxBatch)

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      handler.NewRouter(svc, cfg.JWTSecret),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sweepWorker.Start(ctx)
	go outboxWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop workers
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
