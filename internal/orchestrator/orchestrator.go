package orchestrator

import (
	"context"
	"log/slog"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/graft"
	"github.com/shaiso/Subgraphd/internal/graphnode"
	"github.com/shaiso/Subgraphd/internal/repo"
)

// Gateway — вызовы node-management endpoint (см. graphnode.Client).
type Gateway interface {
	CreateSubgraph(ctx context.Context, name string) error
	DeploySubgraph(ctx context.Context, name string, deployment domain.DeploymentID, node domain.NodeID) (*graphnode.Endpoints, error)
	ReassignSubgraph(ctx context.Context, node domain.NodeID, deployment domain.DeploymentID) error
}

// RuleStore — хранилище indexing rules (см. repo.RuleRepo).
type RuleStore interface {
	List(ctx context.Context, filter repo.RuleFilter) ([]*domain.IndexingRule, error)
	CreateIfMissing(ctx context.Context, rule *domain.IndexingRule) (bool, error)
	Delete(ctx context.Context, identifier string) error
}

// NodeSelector — выбор целевого узла (см. nodes.Selector).
type NodeSelector interface {
	Select(explicit domain.NodeID) (domain.NodeID, error)
}

// Orchestrator — ensure/remove deployments.
type Orchestrator struct {
	gateway  Gateway
	rules    RuleStore
	selector NodeSelector
	resolver *graft.Resolver
	maxDepth int
	logger   *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	Gateway  Gateway
	Rules    RuleStore
	Selector NodeSelector

	// AutoGraftResolverDepth — максимальная глубина рекурсивного
	// развёртывания graft base (default: 0, авторазрешение выключено).
	AutoGraftResolverDepth int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxDepth := cfg.AutoGraftResolverDepth
	if maxDepth < 0 {
		maxDepth = 0
	}

	return &Orchestrator{
		gateway:  cfg.Gateway,
		rules:    cfg.Rules,
		selector: cfg.Selector,
		resolver: graft.NewResolver(logger),
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// Create регистрирует имя subgraph. "already exists" не считается ошибкой.
func (o *Orchestrator) Create(ctx context.Context, name string) error {
	err := o.gateway.CreateSubgraph(ctx, name)
	if err == nil {
		return nil
	}
	if graphnode.Classify(err) == graphnode.KindAlreadyExists {
		o.logger.Debug("subgraph name already exists", "name", name)
		return nil
	}
	return err
}

// Reassign закрепляет deployment за узлом.
//
// Ошибка "unchanged" (deployment уже на этом узле) возвращается вызывающему
// как есть; классифицировать её — дело вызывающего.
func (o *Orchestrator) Reassign(ctx context.Context, node domain.NodeID, deployment domain.DeploymentID) error {
	return o.gateway.ReassignSubgraph(ctx, node, deployment)
}
