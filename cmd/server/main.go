package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/analytics"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/api"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/concept"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/config"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/export"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/ingest"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/intent"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/producer"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/session"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/store"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

func main() {
	// Config
	cfg, err := config.Load(os.Getenv("TRACKER_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logger
	logLevel := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Stores
	conceptRepo := store.NewConceptStore(db)
	eventLog := store.NewEventLog(db)
	sessionStore := store.NewSessionStore(db)
	predictionStore := store.NewPredictionStore(db)

	// Concept engine, hydrated from disk before anything runs.
	concepts := concept.NewStore(conceptRepo, eventLog, concept.Options{
		IntervalCapDays: cfg.IntervalCapDays,
		PersistRetries:  uint64(cfg.PersistRetries),
		Logger:          logger,
	})
	if err := concepts.Hydrate(); err != nil {
		logger.Error("failed to hydrate concepts", "error", err)
		os.Exit(1)
	}
	logger.Info("concepts hydrated", "count", concepts.Count())

	// Session lifecycle is wired before the ingester so both can share the
	// session id source.
	var lifecycle *session.Manager

	ingester := ingest.New(concepts, eventLog, ingest.Options{
		QueueSize:   cfg.QueueSize,
		DedupWindow: cfg.DedupWindow,
		SessionID:   func() string { return lifecycle.CurrentSessionID() },
		Logger:      logger,
	})

	intents := intent.NewTracker(predictionStore, intent.Options{
		SessionID: func() string { return lifecycle.CurrentSessionID() },
		Logger:    logger,
	})
	if persisted, err := predictionStore.All(); err != nil {
		logger.Warn("failed to hydrate predictions", "error", err)
	} else {
		intents.Hydrate(persisted)
	}

	an := analytics.New(eventLog, predictionStore, sessionStore)

	lifecycle = session.NewManager(sessionStore, ingester, an, eventLog, session.Options{
		DrainGrace: cfg.DrainGraceWindow,
		Logger:     logger,
	})

	exporter := export.New(concepts, sessionStore, intents, nil)

	svc := tracker.NewService(concepts, ingester, intents, lifecycle, an, exporter, sessionStore, db, logger)

	ingester.Start()

	// Simulated producers for local runs; real capture sources register
	// the same way.
	var runner *producer.Runner
	if cfg.ProducersEnabled {
		runner = producer.NewRunner(ingester, cfg.PollInterval, logger)
		runner.Register(producer.NewSimulated(models.SourceOCR, producer.DefaultVocabulary, time.Now().UnixNano()))
		runner.Register(producer.NewSimulated(models.SourceAudio, producer.DefaultVocabulary, time.Now().UnixNano()+1))
		runner.Start()
	}

	// Router
	router := api.NewRouter(svc, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("tracker server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if runner != nil {
		runner.Stop()
	}
	// Ends any active session (flushing its rollup) and stops the ingester.
	svc.Close()

	logger.Info("server stopped")
}
