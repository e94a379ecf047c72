package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/library_service/internal/app"
	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/config"
	"github.com/Freeeeeet/library_service/internal/controller"
	"github.com/Freeeeeet/library_service/internal/notify"
	"github.com/Freeeeeet/library_service/internal/repository"
	"github.com/Freeeeeet/library_service/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	tokens, err := auth.NewTokenManager(cfg.TokenKey, tokenTTL)
	if err != nil {
		logger.Fatal("Failed to create token manager", zap.Error(err))
	}

	bookRepo := repository.NewBookRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	professorRepo := repository.NewProfessorRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	memberService := service.NewMemberService(pool, memberRepo, cfg.StartingCredits, logger)
	catalogService := service.NewCatalogService(pool, bookRepo, logger)
	lendingService := service.NewLendingService(pool, requestRepo, bookRepo, memberRepo, cfg.LendingPeriodDays, logger)
	statsService := service.NewStatsService(requestRepo)
	bookingService := service.NewBookingService(pool, memberRepo, professorRepo, paymentRepo, cfg.ConsultationPrice, logger)

	var notifier *notify.Notifier
	if cfg.TelegramToken != "" && cfg.AdminChatID != 0 {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramToken, cfg.AdminChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
		logger.Info("Telegram notifier enabled", zap.Int64("chat_id", cfg.AdminChatID))
	}

	ctrl := controller.NewController(
		memberService,
		catalogService,
		lendingService,
		statsService,
		bookingService,
		tokens,
		notifier,
		logger,
	)

	logger.Info("Starting library service",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
		zap.Int("lending_period_days", cfg.LendingPeriodDays),
	)

	server := app.NewServer(cfg.HTTPAddr, ctrl.Routes(), logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
