// Subgraphd Reconciler — по cron-расписанию ставит ENSURE для deployments,
// которые indexing rules требуют держать развёрнутыми.
//
// Реплик может быть несколько: тик выполняет лидер, выбранный
// через pg_try_advisory_lock.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Subgraphd/internal/config"
	"github.com/shaiso/Subgraphd/internal/mq"
	"github.com/shaiso/Subgraphd/internal/reconciler"
	"github.com/shaiso/Subgraphd/internal/repo"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

const reconcileLockKey int64 = 424242

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting subgraphd-reconciler", "cron", cfg.Reconciler.Cron)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	recCfg := reconciler.Config{
		Rules:      repo.NewRuleRepo(pool),
		Actions:    repo.NewActionRepo(pool),
		Leader:     repo.NewAdvisoryLock(pool, reconcileLockKey),
		Cron:       cfg.Reconciler.Cron,
		BatchSize:  cfg.Reconciler.BatchSize,
		StaleAfter: cfg.Reconciler.StaleAfter,
		Logger:     logger,
	}

	// RabbitMQ опционален: без него actions подхватит polling воркера
	mqConn, err := mq.Dial(mq.ConnectionConfig{URL: cfg.RabbitMQURL, Logger: logger})
	if err != nil {
		logger.Warn("RabbitMQ not available, actions will be picked up by polling", "error", err)
	} else {
		defer mqConn.Close()
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		recCfg.Publisher = mq.NewPublisher(mqConn, logger)
	}

	rec, err := reconciler.New(recCfg)
	if err != nil {
		logger.Error("failed to create reconciler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.ReconcilerAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// reconcile loop
	if err := rec.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("reconciler stopped", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	logger.Info("subgraphd-reconciler stopped")
}
