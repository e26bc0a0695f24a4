package orchestrator

import (
	"context"
	"errors"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/graphnode"
	"github.com/shaiso/Subgraphd/internal/repo"
)

// Remove снимает deployment со всех узлов и удаляет его indexing rule.
//
// Ошибки только логируются: remove выполняется по принципу best effort.
func (o *Orchestrator) Remove(ctx context.Context, deployment domain.DeploymentID) {
	logger := o.logger.With("deployment", deployment)

	if err := o.Reassign(ctx, domain.UnassignedNode, deployment); err != nil {
		if graphnode.Classify(err) != graphnode.KindUnchanged {
			logger.Error("failed to remove deployment", "error", err)
			return
		}
		logger.Debug("deployment already unassigned")
	}

	if err := o.rules.Delete(ctx, deployment.String()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Debug("no indexing rule to delete")
		} else {
			logger.Error("failed to delete indexing rule", "error", err)
		}
		return
	}

	logger.Info("deployment removed")
}
