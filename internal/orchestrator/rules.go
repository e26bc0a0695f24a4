package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/repo"
)

// syncRule создаёт offchain-правило для deployment, если правила ещё нет.
// Существующее правило не изменяется.
func (o *Orchestrator) syncRule(ctx context.Context, deployment domain.DeploymentID) error {
	rules, err := o.rules.List(ctx, repo.RuleFilter{})
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}

	identifiers := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		identifiers[r.Identifier] = struct{}{}
	}

	if _, ok := identifiers[deployment.String()]; ok {
		return nil
	}

	// Правило могли создать между List и вставкой: такое правило не трогаем
	rule := domain.NewOffchainRule(deployment)
	created, err := o.rules.CreateIfMissing(ctx, rule)
	if err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	if !created {
		o.logger.Debug("indexing rule already exists", "deployment", deployment)
		return nil
	}

	o.logger.Info("indexing rule created",
		"deployment", deployment,
		"decision_basis", rule.DecisionBasis,
	)
	return nil
}
