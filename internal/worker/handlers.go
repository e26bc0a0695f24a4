package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/mq"
	"github.com/shaiso/Subgraphd/internal/orchestrator"
	"github.com/shaiso/Subgraphd/internal/repo"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

// handleActionQueued обрабатывает action.queued из очереди.
func (w *Worker) handleActionQueued(ctx context.Context, msg *mq.Message) error {
	payload, err := mq.ParsePayload[mq.ActionQueuedPayload](msg)
	if err != nil {
		return err
	}

	w.logger.Debug("received action.queued",
		"action_id", payload.ActionID,
		"type", payload.Type,
		"deployment", payload.Deployment,
	)

	if err := w.processAction(ctx, payload.ActionID); err != nil {
		// Ожидаемые ситуации — ack
		if errors.Is(err, ErrActionNotFound) || errors.Is(err, ErrActionNotQueued) {
			w.logger.Debug("action not processed", "action_id", payload.ActionID, "reason", err)
			return nil
		}
		return err
	}
	return nil
}

// processAction загружает action, выполняет его и сохраняет итог.
func (w *Worker) processAction(ctx context.Context, id uuid.UUID) error {
	// 1. Загружаем
	action, err := w.actions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrActionNotFound, id)
		}
		return fmt.Errorf("get action: %w", err)
	}

	// 2. Проверяем статус
	if action.Status != domain.ActionStatusQueued {
		return ErrActionNotQueued
	}

	// 3. RUNNING: берёт только тот, чей UPDATE сработал
	action.MarkRunning()
	claimed, err := w.actions.Claim(ctx, action)
	if err != nil {
		return fmt.Errorf("claim action: %w", err)
	}
	if !claimed {
		return ErrActionNotQueued
	}

	logger := w.logger.With(
		"action_id", action.ID,
		"type", action.Type,
		"deployment", action.Deployment,
	)
	logger.Info("action started", "name", action.Name, "node", action.Node)

	// 4. Выполняем
	node, execErr := w.execute(ctx, action)

	// 5. Итог
	if execErr == nil {
		action.MarkSucceeded(node)
	} else {
		action.MarkFailed(execErr.Error())
	}

	// Итог сохраняем даже если ctx отменён во время выполнения
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.actions.Update(saveCtx, action); err != nil {
		return fmt.Errorf("update action to %s: %w", action.Status, err)
	}

	telemetry.ActionsProcessed.WithLabelValues(string(action.Type), string(action.Status)).Inc()

	if execErr != nil {
		logger.Warn("action failed",
			"attempt", action.Attempt,
			"duration", action.Duration(),
			"error", execErr,
		)
		return nil
	}

	logger.Info("action succeeded",
		"node", action.Node,
		"attempt", action.Attempt,
		"duration", action.Duration(),
	)
	return nil
}

// execute выполняет action по типу. Возвращает узел, за которым закреплён deployment.
func (w *Worker) execute(ctx context.Context, action *domain.Action) (domain.NodeID, error) {
	switch action.Type {
	case domain.ActionTypeEnsure:
		outcome, err := w.ensureWithRetry(ctx, action)
		if err != nil {
			return "", err
		}
		return outcome.Node, nil

	case domain.ActionTypeRemove:
		w.deployer.Remove(ctx, action.Deployment)
		return "", nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownActionType, action.Type)
	}
}

// ensureWithRetry вызывает Ensure, пока Outcome требует повтора.
//
// Ошибка Ensure завершает action сразу; повторяется только
// OutcomeRetryRequired, не больше retry.MaxAttempts вызовов.
func (w *Worker) ensureWithRetry(ctx context.Context, action *domain.Action) (*orchestrator.Outcome, error) {
	req := action.Request()

	for {
		outcome, err := w.deployer.Ensure(ctx, req)
		if err != nil {
			return nil, err
		}
		if !outcome.RetryRequired() {
			return outcome, nil
		}

		if !action.CanRetry(w.retry.MaxAttempts) {
			return nil, fmt.Errorf("%w after %d attempts: graft base %s",
				ErrGraftRetryExhausted, action.Attempt, outcome.GraftBase)
		}

		delay := calculateBackoff(action.Attempt, w.retry)

		w.logger.Info("graft base resolved, retrying ensure",
			"action_id", action.ID,
			"deployment", action.Deployment,
			"graft_base", outcome.GraftBase,
			"attempt", action.Attempt,
			"delay", delay,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		// Узел фиксируем: повтор должен идти на тот же узел, что и base
		req.Node = outcome.Node

		action.NextAttempt()
		if err := w.actions.Update(ctx, action); err != nil {
			return nil, fmt.Errorf("update action for retry: %w", err)
		}
	}
}
