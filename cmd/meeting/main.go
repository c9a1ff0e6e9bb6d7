package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	config "github.com/meetscribe/backend/config/meeting"
	meeting "github.com/meetscribe/backend/gateways/meeting"
	"github.com/meetscribe/backend/pkg/logger"
)

func main() {
	log := logger.Default()
	log.Info("initializing meeting backend")

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Debug(".env file loaded")
	}

	log.Debug("loading configuration")
	cfg := config.MustLoad()

	logCfg := logger.Config{
		Level:      slog.LevelDebug,
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: false,
	}
	if cfg.LogFile != "" {
		logCfg.File = &logger.FileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		}
	}
	log = logger.New(logCfg)
	log.Info("configuration loaded successfully",
		slog.Int("port", cfg.Port),
		slog.Bool("database_url_set", cfg.DatabaseURL != ""),
		slog.Bool("assemblyai_api_key_set", cfg.Transcriber.APIKey != ""),
		slog.String("summarizer_url", cfg.Summarizer.Url),
		slog.String("upload_dir", cfg.UploadDir))

	ctx := logger.WithContext(context.Background(), log)

	rootCtx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer cancel()

	log.Info("starting meeting backend application")
	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		return
	}
	log.Info("application terminated successfully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	srv, err := meeting.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}
	log.Info("meeting server instance created successfully")

	if err := srv.Start(ctx); err != nil {
		log.Error("server start failed", slog.String("error", err.Error()))
		return err
	}
	log.Info("server started and stopped gracefully")
	return nil
}
