package orchestrator

import (
	"context"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/graft"
	"github.com/shaiso/Subgraphd/internal/graphnode"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

// Ensure создаёт, разворачивает и закрепляет deployment за узлом.
//
// Возвращает:
//   - Outcome{Status: OutcomeEnsured}, nil — deployment обеспечен
//   - Outcome{Status: OutcomeRetryRequired}, nil — развёрнут graft base,
//     req нужно вызвать повторно
//   - nil, *EnsureError — отказ на одном из шагов
func (o *Orchestrator) Ensure(ctx context.Context, req domain.DeploymentRequest) (*Outcome, error) {
	outcome, err := o.ensure(ctx, req)

	switch {
	case err != nil:
		telemetry.EnsureTotal.WithLabelValues("failed").Inc()
	case outcome.RetryRequired():
		telemetry.EnsureTotal.WithLabelValues("retry_required").Inc()
	default:
		telemetry.EnsureTotal.WithLabelValues("ensured").Inc()
	}

	return outcome, err
}

func (o *Orchestrator) ensure(ctx context.Context, req domain.DeploymentRequest) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, o.fail(req, StepValidate, nil, err)
	}

	// 0. Узел
	node, err := o.selector.Select(req.Node)
	if err != nil {
		return nil, o.fail(req, StepSelect, nil, err)
	}
	req.Node = node

	logger := telemetry.WithDeployment(o.logger, req.Name, req.Deployment.String()).
		With("node", node, "depth", req.Depth)
	logger.Info("ensuring deployment")

	// 1. Имя
	if err := o.Create(ctx, req.Name); err != nil {
		return nil, o.fail(req, StepCreate, ErrNameCreation, err)
	}

	// 2. Deploy
	endpoints, err := o.gateway.DeploySubgraph(ctx, req.Name, req.Deployment, node)
	if err != nil {
		return o.handleDeployFailure(ctx, req, err)
	}

	if err := o.syncRule(ctx, req.Deployment); err != nil {
		return nil, o.fail(req, StepRuleSync, ErrRuleSync, err)
	}

	// 3. Reassign
	if err := o.Reassign(ctx, node, req.Deployment); err != nil {
		if graphnode.Classify(err) != graphnode.KindUnchanged {
			return nil, o.fail(req, StepReassign, ErrReassignFailed, err)
		}
		logger.Debug("deployment already assigned to node", "error", err)
	}

	logger.Info("deployment ensured")

	return &Outcome{
		Status:     OutcomeEnsured,
		Name:       req.Name,
		Deployment: req.Deployment,
		Node:       node,
		Endpoints:  endpoints,
	}, nil
}

// handleDeployFailure разбирает отказ deploy.
//
// Транспортные ошибки и таймаут не разбираются: текста ошибки endpoint нет.
// Для отсутствующего graft base в пределах глубины base обеспечивается
// рекурсивно на depth+1, затем исходный deployment повторно отправляется
// на той же глубине, и вызывающий получает OutcomeRetryRequired.
func (o *Orchestrator) handleDeployFailure(ctx context.Context, req domain.DeploymentRequest, deployErr error) (*Outcome, error) {
	remote, ok := graphnode.AsRemote(deployErr)
	if !ok {
		return nil, o.fail(req, StepDeploy, ErrDeployFailed, deployErr)
	}

	res := o.resolver.Resolve(remote.Message, req.Depth, o.maxDepth)
	switch res.Kind {
	case graft.Resolved:
		// обрабатывается ниже
	case graft.Exhausted:
		return nil, o.fail(req, StepDeploy, ErrGraftResolutionExhausted, deployErr)
	default:
		return nil, o.fail(req, StepDeploy, ErrDeployFailed, deployErr)
	}

	logger := telemetry.WithDeployment(o.logger, req.Name, req.Deployment.String()).
		With("node", req.Node, "depth", req.Depth, "graft_base", res.Base)

	// Base — на следующем уровне рекурсии
	baseReq := domain.DeploymentRequest{
		Name:       req.Name,
		Deployment: res.Base,
		Node:       req.Node,
		Depth:      req.Depth + 1,
	}
	if _, err := o.ensure(ctx, baseReq); err != nil {
		return nil, o.fail(req, StepGraft, nil, err)
	}

	// Повторный deploy исходного deployment; его итог подтвердит следующий вызов Ensure
	if _, err := o.gateway.DeploySubgraph(ctx, req.Name, req.Deployment, req.Node); err != nil {
		logger.Info("redeploy after graft resolution failed, retry required", "error", err)
	} else {
		logger.Info("redeploy after graft resolution accepted, retry required")
	}

	return &Outcome{
		Status:     OutcomeRetryRequired,
		Name:       req.Name,
		Deployment: req.Deployment,
		Node:       req.Node,
		GraftBase:  res.Base,
	}, nil
}

// fail логирует отказ и возвращает EnsureError.
func (o *Orchestrator) fail(req domain.DeploymentRequest, step Step, kind error, cause error) error {
	err := &EnsureError{
		Name:       req.Name,
		Deployment: req.Deployment,
		Node:       req.Node,
		Depth:      req.Depth,
		Step:       step,
		Kind:       kind,
		Err:        cause,
	}

	o.logger.Error("failed to ensure deployment",
		"name", req.Name,
		"deployment", req.Deployment,
		"node", req.Node,
		"depth", req.Depth,
		"step", step,
		"error", cause,
	)
	return err
}
