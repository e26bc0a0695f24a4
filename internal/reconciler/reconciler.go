package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/repo"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

// DefaultStaleAfter — возраст RUNNING action, после которого он считается зависшим.
const DefaultStaleAfter = time.Hour

// RuleLister — чтение indexing rules (см. repo.RuleRepo).
type RuleLister interface {
	List(ctx context.Context, filter repo.RuleFilter) ([]*domain.IndexingRule, error)
}

// ActionStore — создание actions (см. repo.ActionRepo).
type ActionStore interface {
	Create(ctx context.Context, action *domain.Action) error
	HasActive(ctx context.Context, deployment domain.DeploymentID, staleAfter time.Duration) (bool, error)
}

// Publisher — уведомление воркеров (см. mq.Publisher).
type Publisher interface {
	PublishActionQueued(ctx context.Context, action *domain.Action) error
}

// Leader — лидерство между репликами (см. repo.AdvisoryLock).
type Leader interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Reconciler периодически ставит ENSURE для deployments,
// которые правила требуют держать развёрнутыми.
type Reconciler struct {
	rules      RuleLister
	actions    ActionStore
	publisher  Publisher
	leader     Leader
	schedule   cron.Schedule
	batchSize  int
	staleAfter time.Duration
	logger     *slog.Logger
}

// Config — конфигурация Reconciler.
type Config struct {
	Rules   RuleLister
	Actions ActionStore

	// Publisher — опционально; без него actions подхватит polling воркера.
	Publisher Publisher

	// Leader — опционально; без него каждая реплика считает себя лидером.
	Leader Leader

	Cron      string // default: */5 * * * *
	BatchSize int    // правил на страницу выборки (default: 500)

	// StaleAfter — через сколько RUNNING action считается зависшим и
	// больше не блокирует новый ENSURE (default: 1h).
	StaleAfter time.Duration

	Logger *slog.Logger
}

// New создаёт новый Reconciler.
func New(cfg Config) (*Reconciler, error) {
	expr := cfg.Cron
	if expr == "" {
		expr = DefaultCron
	}
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		rules:      cfg.Rules,
		actions:    cfg.Actions,
		publisher:  cfg.Publisher,
		leader:     cfg.Leader,
		schedule:   schedule,
		batchSize:  batchSize,
		staleAfter: staleAfter,
		logger:     logger,
	}, nil
}

// Run выполняет тики по расписанию до отмены ctx.
func (r *Reconciler) Run(ctx context.Context) error {
	defer func() {
		if r.leader != nil {
			if err := r.leader.Release(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("failed to release leadership", "error", err)
			}
		}
	}()

	for {
		next := r.schedule.Next(time.Now())
		r.logger.Debug("next reconcile tick", "at", next.UTC())

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		r.runTick(ctx)
	}
}

// runTick выполняет Tick, если эта реплика — лидер.
func (r *Reconciler) runTick(ctx context.Context) bool {
	if r.leader != nil {
		ok, err := r.leader.TryAcquire(ctx)
		if err != nil {
			r.logger.Error("leader election failed", "error", err)
			return false
		}
		if !ok {
			r.logger.Debug("not the leader, skipping tick")
			return false
		}
	}

	if err := r.Tick(ctx); err != nil {
		r.logger.Error("reconcile tick failed", "error", err)
	}
	return true
}

// Tick выполняет один проход сверки.
//
//  1. Постранично (по batchSize) находит правила deployment с decision basis always/offchain
//  2. Пропускает deployments с активным (QUEUED/RUNNING) action
//  3. Создаёт ENSURE action и публикует action.queued
//
// Ошибки одного правила не блокируют остальные.
func (r *Reconciler) Tick(ctx context.Context) error {
	filter := repo.RuleFilter{
		IdentifierType: domain.IdentifierTypeDeployment,
		DecisionBases:  []domain.DecisionBasis{domain.DecisionBasisAlways, domain.DecisionBasisOffchain},
		Limit:          r.batchSize,
	}

	var total, enqueued, skipped, failed int
	for {
		rules, err := r.rules.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("list rules at offset %d: %w", filter.Offset, err)
		}
		total += len(rules)

		for _, rule := range rules {
			created, err := r.reconcileRule(ctx, rule)
			switch {
			case err != nil:
				failed++
				r.logger.Error("failed to reconcile rule",
					"identifier", rule.Identifier,
					"error", err,
				)
			case created:
				enqueued++
			default:
				skipped++
			}
		}

		if len(rules) < r.batchSize {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		filter.Offset += len(rules)
	}

	r.logger.Info("reconcile tick completed",
		"rules", total,
		"enqueued", enqueued,
		"skipped", skipped,
		"failed", failed,
	)
	return nil
}

// reconcileRule ставит ENSURE для одного правила.
// Возвращает true, если action создан.
func (r *Reconciler) reconcileRule(ctx context.Context, rule *domain.IndexingRule) (bool, error) {
	if !rule.DecisionBasis.Retains() {
		return false, nil
	}

	deployment, err := domain.ParseDeploymentID(rule.Identifier)
	if err != nil {
		r.logger.Warn("rule identifier is not a deployment id, skipping",
			"identifier", rule.Identifier,
			"error", err,
		)
		return false, nil
	}

	active, err := r.actions.HasActive(ctx, deployment, r.staleAfter)
	if err != nil {
		return false, fmt.Errorf("check active actions: %w", err)
	}
	if active {
		return false, nil
	}

	action := domain.NewEnsureAction("", deployment, "")
	if err := r.actions.Create(ctx, action); err != nil {
		return false, fmt.Errorf("create action: %w", err)
	}
	telemetry.ReconcileEnqueued.Inc()

	r.logger.Info("enqueued ensure",
		"action_id", action.ID,
		"deployment", deployment,
		"name", action.Name,
		"decision_basis", rule.DecisionBasis,
	)

	if r.publisher != nil {
		if err := r.publisher.PublishActionQueued(ctx, action); err != nil {
			// action уже в БД, воркер заберёт его через polling
			r.logger.Warn("failed to publish action.queued",
				"action_id", action.ID,
				"error", err,
			)
		}
	}

	return true, nil
}
