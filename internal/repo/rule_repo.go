package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Subgraphd/internal/domain"
)

// RuleRepo — репозиторий indexing rules.
type RuleRepo struct {
	pool *pgxpool.Pool
}

// NewRuleRepo создаёт новый RuleRepo.
func NewRuleRepo(pool *pgxpool.Pool) *RuleRepo {
	return &RuleRepo{pool: pool}
}

// RuleFilter — параметры фильтрации indexing rules.
// Пустые поля не ограничивают выборку.
type RuleFilter struct {
	IdentifierType domain.IdentifierType
	DecisionBases  []domain.DecisionBasis
	Limit          int
	Offset         int
}

// Get возвращает правило по identifier.
func (r *RuleRepo) Get(ctx context.Context, identifier string) (*domain.IndexingRule, error) {
	query := `
		SELECT identifier, identifier_type, decision_basis, created_at, updated_at
		FROM indexing_rules
		WHERE identifier = $1
	`
	rule, err := scanRule(r.pool.QueryRow(ctx, query, identifier))
	if err != nil {
		return nil, wrapErr("get rule", err)
	}
	return rule, nil
}

// List возвращает правила с фильтрацией.
func (r *RuleRepo) List(ctx context.Context, filter RuleFilter) ([]*domain.IndexingRule, error) {
	var bases []string
	for _, b := range filter.DecisionBases {
		bases = append(bases, string(b))
	}

	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	query := `
		SELECT identifier, identifier_type, decision_basis, created_at, updated_at
		FROM indexing_rules
		WHERE ($1::text IS NULL OR identifier_type = $1)
		  AND ($2::text[] IS NULL OR decision_basis = ANY($2))
		ORDER BY created_at ASC, identifier ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.IdentifierType)),
		bases,
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.IndexingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Upsert создаёт правило или обновляет существующее с тем же identifier.
func (r *RuleRepo) Upsert(ctx context.Context, rule *domain.IndexingRule) error {
	query := `
		INSERT INTO indexing_rules (identifier, identifier_type, decision_basis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identifier) DO UPDATE
		SET identifier_type = EXCLUDED.identifier_type,
		    decision_basis  = EXCLUDED.decision_basis,
		    updated_at      = EXCLUDED.updated_at
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		rule.Identifier,
		rule.IdentifierType,
		rule.DecisionBasis,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Scan(&rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

// CreateIfMissing создаёт правило, если правила с тем же identifier ещё нет.
// Существующее правило не изменяется. Возвращает true, если правило создано.
func (r *RuleRepo) CreateIfMissing(ctx context.Context, rule *domain.IndexingRule) (bool, error) {
	query := `
		INSERT INTO indexing_rules (identifier, identifier_type, decision_basis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identifier) DO NOTHING
	`
	result, err := r.pool.Exec(ctx, query,
		rule.Identifier,
		rule.IdentifierType,
		rule.DecisionBasis,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("create rule: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// Delete удаляет правило по identifier.
func (r *RuleRepo) Delete(ctx context.Context, identifier string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM indexing_rules WHERE identifier = $1`, identifier)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanRule сканирует одну строку в IndexingRule.
func scanRule(row pgx.Row) (*domain.IndexingRule, error) {
	var rule domain.IndexingRule
	err := row.Scan(
		&rule.Identifier,
		&rule.IdentifierType,
		&rule.DecisionBasis,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
