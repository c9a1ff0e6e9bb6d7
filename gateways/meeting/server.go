package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/meetscribe/backend/config/meeting"
	"github.com/meetscribe/backend/gateways/meeting/handler"
	"github.com/meetscribe/backend/pkg/gen"
	"github.com/meetscribe/backend/services/meeting/blob"
	"github.com/meetscribe/backend/services/meeting/clients/assembly"
	"github.com/meetscribe/backend/services/meeting/clients/summarizer"
	"github.com/meetscribe/backend/services/meeting/pipeline"
	"github.com/meetscribe/backend/services/meeting/storage"
	"github.com/meetscribe/backend/services/meeting/storage/memory"
	"github.com/meetscribe/backend/services/meeting/storage/postgres"
	"github.com/meetscribe/backend/services/meeting/usecase"
)

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	runner  *pipeline.Runner
	handler *handler.Handler
}

func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	log.Info("creating new meeting server")
	log.Debug("server config",
		slog.Int("port", cfg.Port),
		slog.Bool("database_url_set", cfg.DatabaseURL != ""),
		slog.Bool("assemblyai_api_key_set", cfg.Transcriber.APIKey != ""),
		slog.String("summarizer_url", cfg.Summarizer.Url),
		slog.String("upload_dir", cfg.UploadDir))

	uuidGen := gen.UUID()

	var stg storage.Storage
	if cfg.DatabaseURL != "" {
		log.Debug("opening postgres storage")
		pg, err := postgres.New(cfg.DatabaseURL, uuidGen)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		stg = pg
		log.Info("postgres storage ready")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		stg = memory.New(uuidGen)
	}

	log.Debug("creating local blob store", slog.String("dir", cfg.UploadDir))
	blobs, err := blob.NewLocal(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}
	log.Info("blob store ready")

	log.Debug("creating transcription client")
	transcriber := assembly.New(cfg.Transcriber.APIKey,
		assembly.WithPollInterval(cfg.Transcriber.PollInterval))
	log.Info("transcription client created successfully")

	log.Debug("creating summarizer client")
	summarize := summarizer.New(cfg.Summarizer.Url)
	log.Info("summarizer client created successfully")

	runner := pipeline.New(log)
	usc := usecase.New(stg, blobs, transcriber, summarize, runner, cfg.Transcriber.MaxAttempts)

	h := handler.New(usc, cfg.UploadDir, log)
	log.Info("meeting server instance created successfully")

	return &Server{
		cfg:     cfg,
		log:     log,
		runner:  runner,
		handler: h,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting meeting server")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.handler.RegisterRoutes(router)
	router.Get("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"status": true})
	})
	router.Handle("/metrics", promhttp.Handler())
	s.log.Info("routes registered successfully")

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.log.Info("HTTP server configured", slog.String("addr", addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.log.Info("meeting server started", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil {
			s.log.Error("ListenAndServe error", slog.String("error", err.Error()))
		}
		serverErrors <- err
	}()

	s.log.Info("entering main server loop")
	select {
	case err := <-serverErrors:
		s.log.Error("server error received", slog.String("error", err.Error()))
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		s.log.Info("start shutdown", slog.String("signal", sig.String()))
		return s.stop(srv)
	case <-ctx.Done():
		s.log.Info("closing server due to context cancellation")
		return s.stop(srv)
	}
}

// stop shuts the HTTP server down gracefully, then drains in-flight
// pipeline runs so ended meetings still get their summaries persisted.
func (s *Server) stop(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info("shutting down HTTP server gracefully")
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		s.log.Warn("forcing server close")
		srv.Close()
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}
	s.log.Info("server shutdown completed successfully")

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	s.log.Info("draining in-flight pipeline runs")
	if err := s.runner.Drain(drainCtx); err != nil {
		return fmt.Errorf("failed to drain pipeline runs: %w", err)
	}

	s.log.Info("server stopped cleanly")
	return nil
}
