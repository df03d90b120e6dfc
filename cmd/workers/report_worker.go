package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/config"
	"carbondesk/buyer-portal/buyer-portal-backend/internal/impact"
)

// archiveTimeout bounds one archival sweep
const archiveTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := impact.NewPostgresRepository(db)
	service := impact.NewService(repo, impact.DefaultEngineConfig(), logger)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Worker.ArchiveSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		archived, err := service.ArchiveExpiredReports(ctx, cfg.Worker.ArchiveBatch)
		if err != nil {
			logger.Error("Archival sweep failed", zap.Error(err))
			return
		}
		logger.Info("Archival sweep finished", zap.Int("archived", archived))
	})
	if err != nil {
		logger.Fatal("Invalid archive schedule",
			zap.String("schedule", cfg.Worker.ArchiveSchedule),
			zap.Error(err))
	}

	scheduler.Start()
	logger.Info("Report worker started",
		zap.String("archive_schedule", cfg.Worker.ArchiveSchedule),
		zap.Int("archive_batch", cfg.Worker.ArchiveBatch))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down report worker...")
	<-scheduler.Stop().Done()
	logger.Info("Report worker exiting")
}
