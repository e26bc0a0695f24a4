// Subgraphd Worker — выполняет deployment actions.
//
// Worker:
//   - Получает action.queued из RabbitMQ, с polling fallback по БД
//   - ENSURE: create → deploy (с разрешением graft base) → rule sync → reassign
//   - REMOVE: unassign и удаление indexing rule
//   - Повторяет ensure после развёртывания graft base
//
// Workers масштабируются горизонтально.
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
	"github.com/shaiso/Subgraphd/internal/graphnode"
	"github.com/shaiso/Subgraphd/internal/mq"
	"github.com/shaiso/Subgraphd/internal/nodes"
	"github.com/shaiso/Subgraphd/internal/orchestrator"
	"github.com/shaiso/Subgraphd/internal/repo"
	"github.com/shaiso/Subgraphd/internal/telemetry"
	"github.com/shaiso/Subgraphd/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Инициализируем structured logging
	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting subgraphd-worker",
		"admin_url", cfg.GraphNode.AdminURL,
		"index_nodes", cfg.GraphNode.IndexNodeIDs,
		"auto_graft_resolver_depth", cfg.GraphNode.AutoGraftResolverDepth,
	)

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

	// Orchestrator
	orch := orchestrator.New(orchestrator.Config{
		Gateway: graphnode.NewClient(graphnode.ClientConfig{
			Endpoint:      cfg.GraphNode.AdminURL,
			DeployTimeout: cfg.GraphNode.DeployTimeout,
			Logger:        logger,
		}),
		Rules: repo.NewRuleRepo(pool),
		Selector: nodes.NewSelector(nodes.Config{
			Pool:   cfg.GraphNode.IndexNodeIDs,
			Logger: logger,
		}),
		AutoGraftResolverDepth: cfg.GraphNode.AutoGraftResolverDepth,
		Logger:                 logger,
	})

	// RabbitMQ
	mqConn, err := mq.Dial(mq.ConnectionConfig{URL: cfg.RabbitMQURL, Logger: logger})
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
	}

	// Создаём worker
	w := worker.New(worker.Config{
		Actions:  repo.NewActionRepo(pool),
		Deployer: orch,
		Conn:     mqConn,
		Retry: worker.RetryPolicy{
			MaxAttempts:  cfg.Worker.GraftRetryMaxAttempts,
			InitialDelay: cfg.Worker.GraftRetryInitialDelay,
			MaxDelay:     cfg.Worker.GraftRetryMaxDelay,
			Backoff:      cfg.Worker.GraftRetryBackoff,
		},
		PollInterval: cfg.Worker.PollInterval,
		BatchSize:    cfg.Worker.BatchSize,
		Prefetch:     cfg.Worker.Prefetch,
		Logger:       logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		if w.IsStopped() {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.WorkerAddr(),
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

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем worker: дожидаемся текущих actions
	w.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	logger.Info("subgraphd-worker stopped")
}
