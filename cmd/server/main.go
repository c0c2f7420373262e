package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/config"
	"github.com/nestlog/tracker-server-go/internal/database"
	"github.com/nestlog/tracker-server-go/internal/device"
	"github.com/nestlog/tracker-server-go/internal/durable"
	"github.com/nestlog/tracker-server-go/internal/handler"
	"github.com/nestlog/tracker-server-go/internal/jobs"
	"github.com/nestlog/tracker-server-go/internal/middleware"
	"github.com/nestlog/tracker-server-go/internal/recovery"
	"github.com/nestlog/tracker-server-go/internal/registry"
	"github.com/nestlog/tracker-server-go/internal/repository"
	"github.com/nestlog/tracker-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	store, closeStore, err := buildDurableStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open durable session store")
	}
	defer closeStore()

	deviceID, err := device.LoadOrCreateID(cfg.DataDir, config.DeviceIDFilename)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load device identity")
	}

	reg := registry.New(store)

	// Recovery runs before any lifecycle call is served.
	coordinator := recovery.New(store, reg, cfg.SessionExpiry())
	coordinator.Run(context.Background())

	recordRepo := repository.NewSessionRecordRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)
	settingsRepo := repository.NewScheduleSettingsRepository(db.DB)

	sessionService := service.NewSessionService(reg, recordRepo, deviceID)
	scheduleService := service.NewScheduleService(eventRepo, settingsRepo, cfg.IntervalHours)

	sessionHandler := handler.NewSessionHandler(sessionService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	adminHandler := handler.NewAdminHandler(coordinator, sessionService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/sessions", sessionHandler.Routes())
		r.Mount("/schedule", scheduleHandler.Routes())
		r.Mount("/admin", adminHandler.Routes())
	})

	flushJob := jobs.NewFlushJob(reg, cfg.FlushRetryInterval())
	flushJob.Start()
	defer flushJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func buildDurableStore(cfg *config.Config) (durable.Store, func(), error) {
	switch cfg.DurableBackend {
	case "redis":
		store, err := durable.NewRedisStoreFromURL(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("using redis durable session store")
		return store, func() { store.Close() }, nil
	default:
		store, err := durable.NewFileStore(cfg.DataDir, config.SessionBlobFilename)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dataDir", cfg.DataDir).Msg("using file durable session store")
		return store, func() {}, nil
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
