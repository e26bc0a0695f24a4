package orchestrator

import (
	"errors"
	"fmt"

	"github.com/shaiso/Subgraphd/internal/domain"
)

// Ошибки оркестратора.
var (
	// ErrEnsureFailed — deployment не обеспечен. Оборачивает ошибку любого шага.
	ErrEnsureFailed = errors.New("deployment not ensured")

	// ErrNameCreation — не удалось зарегистрировать имя subgraph.
	ErrNameCreation = errors.New("subgraph name creation failed")

	// ErrDeployFailed — deploy завершился ошибкой, которая не разрешается через graft.
	ErrDeployFailed = errors.New("subgraph deploy failed")

	// ErrReassignFailed — не удалось закрепить deployment за узлом.
	ErrReassignFailed = errors.New("subgraph reassign failed")

	// ErrRuleSync — не удалось записать indexing rule.
	ErrRuleSync = errors.New("indexing rule sync failed")

	// ErrGraftResolutionExhausted — graft base отсутствует, а лимит глубины достигнут.
	ErrGraftResolutionExhausted = errors.New("graft base resolution depth exhausted")

	// ErrGraftRetryRequired — graft base развёрнут, исходный ensure нужно повторить.
	// Не ошибка выполнения: возвращается только из Outcome.Err.
	ErrGraftRetryRequired = errors.New("graft base resolved, retry required")
)

// Step — шаг ensure, на котором произошёл отказ.
type Step string

const (
	StepValidate Step = "validate"
	StepSelect   Step = "select_node"
	StepCreate   Step = "create"
	StepDeploy   Step = "deploy"
	StepGraft    Step = "graft"
	StepRuleSync Step = "rule_sync"
	StepReassign Step = "reassign"
)

// EnsureError — отказ ensure с контекстом.
//
// errors.Is(err, ErrEnsureFailed) истинно всегда; Unwrap отдаёт
// sentinel шага (ErrDeployFailed и т.д.) и исходную причину.
type EnsureError struct {
	Name       string
	Deployment domain.DeploymentID
	Node       domain.NodeID
	Depth      int
	Step       Step

	// Kind — sentinel шага (может быть nil для validate/select_node).
	Kind error

	// Err — исходная причина.
	Err error
}

func (e *EnsureError) Error() string {
	msg := fmt.Sprintf("%s: %s (name=%s node=%s depth=%d step=%s)",
		ErrEnsureFailed, e.Deployment, e.Name, e.Node, e.Depth, e.Step)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EnsureError) Is(target error) bool {
	return target == ErrEnsureFailed
}

func (e *EnsureError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
