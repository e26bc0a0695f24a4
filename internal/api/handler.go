package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/repo"
)

// ActionStore — хранилище actions (см. repo.ActionRepo).
type ActionStore interface {
	Create(ctx context.Context, action *domain.Action) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error)
	List(ctx context.Context, filter repo.ActionFilter) ([]domain.Action, error)
	Count(ctx context.Context, filter repo.ActionFilter) (int, error)
}

// RuleStore — чтение indexing rules (см. repo.RuleRepo).
type RuleStore interface {
	Get(ctx context.Context, identifier string) (*domain.IndexingRule, error)
	List(ctx context.Context, filter repo.RuleFilter) ([]*domain.IndexingRule, error)
}

// Publisher — уведомление воркеров (см. mq.Publisher).
type Publisher interface {
	PublishActionQueued(ctx context.Context, action *domain.Action) error
}

// NodePool — сконфигурированный пул узлов (см. nodes.Selector).
type NodePool interface {
	Pool() []domain.NodeID
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	actions   ActionStore
	rules     RuleStore
	publisher Publisher
	nodes     NodePool
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Actions ActionStore
	Rules   RuleStore

	// Publisher — опционально; без него actions подхватит polling воркера.
	Publisher Publisher

	Nodes  NodePool
	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		actions:   cfg.Actions,
		rules:     cfg.Rules,
		publisher: cfg.Publisher,
		nodes:     cfg.Nodes,
		logger:    logger,
	}
}
