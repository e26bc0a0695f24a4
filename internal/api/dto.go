package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Subgraphd/internal/domain"
)

// Deployment DTOs

// EnsureDeploymentRequest — запрос на постановку ENSURE.
type EnsureDeploymentRequest struct {
	Deployment string `json:"deployment"`
	Name       string `json:"name,omitempty"`
	Node       string `json:"node,omitempty"`
}

// Action DTOs

// ActionResponse — ответ с action.
type ActionResponse struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Name       string     `json:"name,omitempty"`
	Deployment string     `json:"deployment"`
	Node       string     `json:"node,omitempty"`
	Status     string     `json:"status"`
	Attempt    int        `json:"attempt"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ActionFromDomain конвертирует domain.Action в ActionResponse.
func ActionFromDomain(a domain.Action) ActionResponse {
	return ActionResponse{
		ID:         a.ID,
		Type:       string(a.Type),
		Name:       a.Name,
		Deployment: a.Deployment.String(),
		Node:       a.Node.String(),
		Status:     a.Status.String(),
		Attempt:    a.Attempt,
		Error:      a.Error,
		StartedAt:  a.StartedAt,
		FinishedAt: a.FinishedAt,
		CreatedAt:  a.CreatedAt,
	}
}

// Rule DTOs

// RuleResponse — ответ с indexing rule.
type RuleResponse struct {
	Identifier     string    `json:"identifier"`
	IdentifierType string    `json:"identifier_type"`
	DecisionBasis  string    `json:"decision_basis"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RuleFromDomain конвертирует domain.IndexingRule в RuleResponse.
func RuleFromDomain(r domain.IndexingRule) RuleResponse {
	return RuleResponse{
		Identifier:     r.Identifier,
		IdentifierType: string(r.IdentifierType),
		DecisionBasis:  string(r.DecisionBasis),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// Node DTOs

// NodeResponse — узел из пула.
type NodeResponse struct {
	ID string `json:"id"`
}
