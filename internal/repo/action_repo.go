package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Subgraphd/internal/domain"
)

// ActionRepo — репозиторий deployment actions.
type ActionRepo struct {
	pool *pgxpool.Pool
}

// NewActionRepo создаёт новый ActionRepo.
func NewActionRepo(pool *pgxpool.Pool) *ActionRepo {
	return &ActionRepo{pool: pool}
}

// ActionFilter — параметры фильтрации actions.
type ActionFilter struct {
	Status     domain.ActionStatus
	Deployment domain.DeploymentID
	Limit      int
	Offset     int
}

const actionColumns = `
	id, type, name, deployment, node, status, attempt, error,
	started_at, finished_at, created_at
`

// Create создаёт новый action.
func (r *ActionRepo) Create(ctx context.Context, action *domain.Action) error {
	query := `
		INSERT INTO deployment_actions (id, type, name, deployment, node, status, attempt, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		action.ID,
		action.Type,
		nullString(action.Name),
		action.Deployment,
		nullString(action.Node.String()),
		action.Status,
		action.Attempt,
		nullString(action.Error),
		action.CreatedAt,
	)
	return wrapErr("insert action", err)
}

// GetByID возвращает action по ID.
func (r *ActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM deployment_actions WHERE id = $1`

	action, err := scanAction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get action", err)
	}
	return action, nil
}

// Update обновляет состояние action.
func (r *ActionRepo) Update(ctx context.Context, action *domain.Action) error {
	query := `
		UPDATE deployment_actions
		SET node = $2, status = $3, attempt = $4, error = $5, started_at = $6, finished_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		action.ID,
		nullString(action.Node.String()),
		action.Status,
		action.Attempt,
		nullString(action.Error),
		action.StartedAt,
		action.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Claim переводит action из QUEUED в RUNNING одним UPDATE.
// Возвращает false, если action уже не в статусе QUEUED.
func (r *ActionRepo) Claim(ctx context.Context, action *domain.Action) (bool, error) {
	query := `
		UPDATE deployment_actions
		SET status = $2, attempt = $3, started_at = $4
		WHERE id = $1 AND status = 'QUEUED'
	`
	result, err := r.pool.Exec(ctx, query,
		action.ID,
		action.Status,
		action.Attempt,
		action.StartedAt,
	)
	if err != nil {
		return false, fmt.Errorf("claim action: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// List возвращает actions с фильтрацией, новые первыми.
func (r *ActionRepo) List(ctx context.Context, filter ActionFilter) ([]domain.Action, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + actionColumns + `
		FROM deployment_actions
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR deployment = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.query(ctx, query,
		nullString(string(filter.Status)),
		nullString(filter.Deployment.String()),
		limit,
		filter.Offset,
	)
}

// Count возвращает количество actions, подходящих под фильтр (без limit/offset).
func (r *ActionRepo) Count(ctx context.Context, filter ActionFilter) (int, error) {
	query := `
		SELECT count(*)
		FROM deployment_actions
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR deployment = $2)
	`
	var n int
	err := r.pool.QueryRow(ctx, query,
		nullString(string(filter.Status)),
		nullString(filter.Deployment.String()),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}

// ListQueued возвращает actions в статусе QUEUED, старые первыми.
func (r *ActionRepo) ListQueued(ctx context.Context, limit int) ([]domain.Action, error) {
	query := `SELECT ` + actionColumns + `
		FROM deployment_actions
		WHERE status = 'QUEUED'
		ORDER BY created_at ASC
		LIMIT $1
	`
	return r.query(ctx, query, limit)
}

// HasActive проверяет, есть ли у deployment action в статусе QUEUED или RUNNING.
// RUNNING, начатый раньше staleAfter назад, активным не считается.
func (r *ActionRepo) HasActive(ctx context.Context, deployment domain.DeploymentID, staleAfter time.Duration) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM deployment_actions
			WHERE deployment = $1
			  AND (status = 'QUEUED'
			       OR (status = 'RUNNING' AND (started_at IS NULL OR started_at > $2)))
		)
	`
	cutoff := time.Now().Add(-staleAfter)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, deployment, cutoff).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active actions: %w", err)
	}
	return exists, nil
}

func (r *ActionRepo) query(ctx context.Context, query string, args ...any) ([]domain.Action, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, *action)
	}
	return actions, rows.Err()
}

// scanAction сканирует одну строку в Action.
func scanAction(row pgx.Row) (*domain.Action, error) {
	var action domain.Action
	var name, node, actionError *string

	err := row.Scan(
		&action.ID,
		&action.Type,
		&name,
		&action.Deployment,
		&node,
		&action.Status,
		&action.Attempt,
		&actionError,
		&action.StartedAt,
		&action.FinishedAt,
		&action.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name != nil {
		action.Name = *name
	}
	if node != nil {
		action.Node = domain.NodeID(*node)
	}
	if actionError != nil {
		action.Error = *actionError
	}
	return &action, nil
}
