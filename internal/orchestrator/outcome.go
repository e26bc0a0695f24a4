package orchestrator

import (
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/graphnode"
)

// OutcomeStatus — итог успешно завершившегося вызова Ensure.
type OutcomeStatus string

const (
	// OutcomeEnsured — deployment создан, развёрнут и закреплён за узлом.
	OutcomeEnsured OutcomeStatus = "ensured"

	// OutcomeRetryRequired — graft base развёрнут, исходный запрос нужно
	// вызвать повторно, чтобы подтвердить итог.
	OutcomeRetryRequired OutcomeStatus = "retry_required"
)

// Outcome — результат Ensure.
type Outcome struct {
	Status     OutcomeStatus
	Name       string
	Deployment domain.DeploymentID
	Node       domain.NodeID

	// Endpoints — адреса запросов (OutcomeEnsured).
	Endpoints *graphnode.Endpoints

	// GraftBase — развёрнутый graft base (OutcomeRetryRequired).
	GraftBase domain.DeploymentID
}

// Ensured возвращает true, если deployment полностью обеспечен.
func (o *Outcome) Ensured() bool {
	return o != nil && o.Status == OutcomeEnsured
}

// RetryRequired возвращает true, если нужен повторный вызов Ensure.
func (o *Outcome) RetryRequired() bool {
	return o != nil && o.Status == OutcomeRetryRequired
}

// Err возвращает ErrGraftRetryRequired для OutcomeRetryRequired, иначе nil.
func (o *Outcome) Err() error {
	if o.RetryRequired() {
		return ErrGraftRetryRequired
	}
	return nil
}
