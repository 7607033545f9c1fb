package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaffoor434/knowledge-base/internal/bootstrap"
	"github.com/gaffoor434/knowledge-base/internal/config"
	"github.com/gaffoor434/knowledge-base/internal/observability/logging"
	"github.com/gaffoor434/knowledge-base/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsHandler(workerMetrics),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeCorpusChanged(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument("worker", time.Since(start), processErr)
		if processErr != nil {
			return processErr
		}

		// The lexical index tracks the vector store, so every successful
		// ingestion is followed by a rebuild from the full corpus.
		rebuildStart := time.Now()
		chunkCount, rebuildErr := app.RebuildUC.RebuildLexicalIndex(processCtx)
		workerMetrics.FinishRebuild("worker", time.Since(rebuildStart), chunkCount, rebuildErr)
		if rebuildErr != nil {
			return rebuildErr
		}

		// API processes reload their snapshots on this notification.
		if err := app.Queue.PublishIndexRebuilt(processCtx); err != nil {
			logger.Warn("index rebuild notification failed", "error", err)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
