package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionType — тип действия над deployment.
type ActionType string

const (
	// ActionTypeEnsure — создать, развернуть и закрепить deployment за узлом.
	ActionTypeEnsure ActionType = "ENSURE"

	// ActionTypeRemove — снять deployment со всех узлов.
	ActionTypeRemove ActionType = "REMOVE"
)

// Valid проверяет, что тип известен.
func (t ActionType) Valid() bool {
	return t == ActionTypeEnsure || t == ActionTypeRemove
}

// Action — действие над deployment в очереди.
//
// Action создаётся:
// - API (ensure/remove по запросу оператора)
// - Reconciler'ом для deployments с удерживающим правилом
//
// Action выполняется Worker'ом.
type Action struct {
	// ID — уникальный идентификатор action.
	ID uuid.UUID `json:"id"`

	// Type — ENSURE или REMOVE.
	Type ActionType `json:"type"`

	// Name — имя subgraph (для ENSURE).
	Name string `json:"name,omitempty"`

	// Deployment — идентификатор deployment.
	Deployment DeploymentID `json:"deployment"`

	// Node — целевой узел. Пустой — выбрать из пула.
	// После успешного ENSURE содержит фактически назначенный узел.
	Node NodeID `json:"node,omitempty"`

	// Status — текущий статус.
	Status ActionStatus `json:"status"`

	// Attempt — номер попытки (начиная с 1).
	// Увеличивается при повторном ensure после graft retry.
	Attempt int `json:"attempt"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// NewEnsureAction создаёт action ENSURE в статусе QUEUED.
func NewEnsureAction(name string, deployment DeploymentID, node NodeID) *Action {
	if name == "" {
		name = DefaultSubgraphName(deployment)
	}
	return &Action{
		ID:         uuid.New(),
		Type:       ActionTypeEnsure,
		Name:       name,
		Deployment: deployment,
		Node:       node,
		Status:     ActionStatusQueued,
		CreatedAt:  time.Now(),
	}
}

// NewRemoveAction создаёт action REMOVE в статусе QUEUED.
func NewRemoveAction(deployment DeploymentID) *Action {
	return &Action{
		ID:         uuid.New(),
		Type:       ActionTypeRemove,
		Deployment: deployment,
		Status:     ActionStatusQueued,
		CreatedAt:  time.Now(),
	}
}

// Request возвращает DeploymentRequest верхнего уровня (depth = 0).
func (a *Action) Request() DeploymentRequest {
	return DeploymentRequest{
		Name:       a.Name,
		Deployment: a.Deployment,
		Node:       a.Node,
	}
}

// Duration возвращает продолжительность выполнения.
func (a *Action) Duration() time.Duration {
	if a.StartedAt == nil || a.FinishedAt == nil {
		return 0
	}
	return a.FinishedAt.Sub(*a.StartedAt)
}

// IsFinished возвращает true, если action завершён.
func (a *Action) IsFinished() bool {
	return a.Status.IsTerminal()
}

// MarkRunning переводит action в статус RUNNING.
func (a *Action) MarkRunning() {
	now := time.Now()
	a.Status = ActionStatusRunning
	a.StartedAt = &now
	a.Attempt++
}

// NextAttempt увеличивает счётчик попыток без смены статуса.
func (a *Action) NextAttempt() {
	a.Attempt++
}

// MarkSucceeded переводит action в статус SUCCEEDED.
func (a *Action) MarkSucceeded(node NodeID) {
	now := time.Now()
	a.Status = ActionStatusSucceeded
	a.FinishedAt = &now
	a.Error = ""
	if !node.IsZero() {
		a.Node = node
	}
}

// MarkFailed переводит action в статус FAILED с ошибкой.
func (a *Action) MarkFailed(err string) {
	now := time.Now()
	a.Status = ActionStatusFailed
	a.FinishedAt = &now
	a.Error = err
}

// CanRetry проверяет, можно ли сделать ещё одну попытку.
func (a *Action) CanRetry(maxAttempts int) bool {
	return a.Attempt < maxAttempts
}
