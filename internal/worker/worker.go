package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/mq"
	"github.com/shaiso/Subgraphd/internal/orchestrator"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 50
	defaultPrefetch     = 5
)

// ActionStore — хранилище actions (см. repo.ActionRepo).
type ActionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error)
	Claim(ctx context.Context, action *domain.Action) (bool, error)
	Update(ctx context.Context, action *domain.Action) error
	ListQueued(ctx context.Context, limit int) ([]domain.Action, error)
}

// Deployer — ensure/remove deployments (см. orchestrator.Orchestrator).
type Deployer interface {
	Ensure(ctx context.Context, req domain.DeploymentRequest) (*orchestrator.Outcome, error)
	Remove(ctx context.Context, deployment domain.DeploymentID)
}

// Worker выполняет deployment actions.
//
// Worker:
//   - Получает action.queued из RabbitMQ (event-driven)
//   - Периодически забирает QUEUED actions из БД (polling fallback)
//   - Выполняет ENSURE/REMOVE через Deployer
//   - Повторяет ensure, пока Outcome требует повтора (graft base)
//
// Несколько экземпляров могут потреблять из одной очереди.
type Worker struct {
	actions  ActionStore
	deployer Deployer
	conn     *mq.Connection
	retry    RetryPolicy

	consumer *mq.Consumer

	pollInterval time.Duration
	batchSize    int
	prefetch     int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	Actions  ActionStore
	Deployer Deployer

	// Conn — соединение с RabbitMQ (опционально; без него работает только polling).
	Conn *mq.Connection

	// Retry — политика повторов ensure (default: DefaultRetryPolicy).
	Retry RetryPolicy

	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // actions за один poll (default: 50)
	Prefetch     int           // prefetch consumer'а (default: 5)

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		actions:      cfg.Actions,
		deployer:     cfg.Deployer,
		conn:         cfg.Conn,
		retry:        retry,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		prefetch:     prefetch,
		logger:       logger,
	}
}

// Start запускает consumer (если есть соединение) и polling.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"retry_max_attempts", w.retry.MaxAttempts,
	)

	if w.conn != nil {
		w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    mq.QueueActionsQueued,
			Handler:  w.handleActionQueued,
			Prefetch: w.prefetch,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("action consumer error", "error", err)
			}
		}()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx)
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт завершения текущих actions.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}

// pollLoop — цикл polling.
func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Сразу при старте: подхватываем actions, созданные пока воркер был выключен
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (w *Worker) poll(ctx context.Context) {
	actions, err := w.actions.ListQueued(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to list queued actions", "error", err)
		return
	}

	if len(actions) == 0 {
		return
	}

	w.logger.Debug("poll found queued actions", "count", len(actions))

	for i := range actions {
		if ctx.Err() != nil {
			return
		}
		id := actions[i].ID
		if err := w.processAction(ctx, id); err != nil && !errors.Is(err, ErrActionNotQueued) {
			w.logger.Error("failed to process action from poll",
				"action_id", id,
				"error", err,
			)
		}
	}
}
