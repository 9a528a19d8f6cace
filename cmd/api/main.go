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

	"github.com/getsentry/sentry-go"
	"github.com/timmy/portrait/internal/api"
	"github.com/timmy/portrait/internal/config"
	"github.com/timmy/portrait/internal/counter"
	"github.com/timmy/portrait/internal/entropy"
	"github.com/timmy/portrait/internal/gatekeeper"
	"github.com/timmy/portrait/internal/generator"
	"github.com/timmy/portrait/internal/logger"
	"github.com/timmy/portrait/internal/provenance"
	"github.com/timmy/portrait/internal/repository"
	"github.com/timmy/portrait/internal/service"
	"github.com/timmy/portrait/internal/storage"
	_ "go.uber.org/automaxprocs"
	"gorm.io/gorm"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	startedAt := time.Now().UTC()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "portrait-api",
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		MaxSize:     cfg.Log.MaxSize,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAge:      cfg.Log.MaxAge,
		Compress:    cfg.Log.Compress,
	})
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if cfg.Sentry.Enabled() {
		if err := initSentry(&cfg.Sentry); err != nil {
			appLogger.WithError(err).Warn("Failed to initialize Sentry")
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	ctx := context.Background()

	var db *gorm.DB
	if cfg.Counter.Backend == counter.BackendDatabase {
		db, err = repository.InitDB(&cfg.Database)
		if err != nil {
			sentry.CaptureException(err)
			appLogger.WithError(err).Fatal("Failed to initialize database")
		}
		defer repository.Close(db)
	}

	ctr, err := counter.New(ctx, &cfg.Counter, db, startedAt)
	if err != nil {
		sentry.CaptureException(err)
		appLogger.WithError(err).Fatal("Failed to initialize counter")
	}

	objectStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if s3Store, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3Store.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	digest, err := provenance.NewDigest(cfg.Provenance.Digest)
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid provenance digest")
	}

	gate := gatekeeper.New(gatekeeper.Policy{
		MinLength:     cfg.Gatekeeper.MinLength,
		MaxLength:     cfg.Gatekeeper.MaxLength,
		MaxCharRun:    cfg.Gatekeeper.MaxCharRun,
		MinAlphaRatio: cfg.Gatekeeper.MinAlphaRatio,
		MinWords:      cfg.Gatekeeper.MinWords,
	}, gatekeeper.NewQuota(cfg.Quota.Limit, cfg.Quota.Window, nil))

	pipeline := service.NewPipeline(
		generator.NewSeedDeriver(entropy.New(&cfg.Entropy), nil),
		provenance.NewStamper(digest),
		cfg.Generator.Draws,
	)
	artifacts := service.NewArtifactService(objectStorage, cfg.Storage.Prefix, cfg.Counter.RecentLimit)
	generationService := service.NewGenerationService(gate, pipeline, ctr, artifacts)

	router := api.SetupRouter(generationService, cfg, appLogger, startedAt)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":    cfg.Server.Port,
			"mode":    cfg.Server.Mode,
			"counter": cfg.Counter.Backend,
			"storage": cfg.Storage.Type,
			"entropy": cfg.Entropy.Source,
			"digest":  digest.Name(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

func initSentry(cfg *config.SentryConfig) error {
	release := cfg.Release
	if release == "" {
		release = "portrait@" + releaseVersion
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
			}
			return event
		},
	})
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for k, v := range headers {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Cookie", "X-Forwarded-For", "X-Real-Ip":
			filtered[k] = "[REDACTED]"
		default:
			filtered[k] = v
		}
	}
	return filtered
}
