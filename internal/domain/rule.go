package domain

import "time"

// IdentifierType — тип идентификатора в indexing rule.
type IdentifierType string

const (
	// IdentifierTypeDeployment — правило для конкретного deployment.
	IdentifierTypeDeployment IdentifierType = "deployment"

	// IdentifierTypeSubgraph — правило для subgraph (всех его версий).
	IdentifierTypeSubgraph IdentifierType = "subgraph"

	// IdentifierTypeGroup — групповое правило (например, "global").
	IdentifierTypeGroup IdentifierType = "group"
)

// DecisionBasis — основание решения об индексации.
type DecisionBasis string

const (
	// DecisionBasisRules — решать по пороговым правилам.
	DecisionBasisRules DecisionBasis = "rules"

	// DecisionBasisNever — никогда не индексировать.
	DecisionBasisNever DecisionBasis = "never"

	// DecisionBasisAlways — всегда индексировать.
	DecisionBasisAlways DecisionBasis = "always"

	// DecisionBasisOffchain — индексировать без on-chain аллокации.
	DecisionBasisOffchain DecisionBasis = "offchain"
)

// Valid проверяет, что значение известно.
func (b DecisionBasis) Valid() bool {
	switch b {
	case DecisionBasisRules, DecisionBasisNever, DecisionBasisAlways, DecisionBasisOffchain:
		return true
	default:
		return false
	}
}

// Retains возвращает true, если deployment с таким правилом должен
// оставаться развёрнутым при reconciliation.
func (b DecisionBasis) Retains() bool {
	return b == DecisionBasisAlways || b == DecisionBasisOffchain
}

// IndexingRule — запись политики индексации (policy record).
//
// Orchestrator создаёт правило только если его нет, и никогда
// не перезаписывает существующее: у deployment может быть более строгое
// правило, выставленное оператором.
type IndexingRule struct {
	// Identifier — hash deployment (или id subgraph / имя группы).
	Identifier string `json:"identifier"`

	// IdentifierType — тип identifier.
	IdentifierType IdentifierType `json:"identifier_type"`

	// DecisionBasis — основание решения.
	DecisionBasis DecisionBasis `json:"decision_basis"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOffchainRule создаёт правило по умолчанию для развёрнутого deployment.
func NewOffchainRule(d DeploymentID) *IndexingRule {
	now := time.Now()
	return &IndexingRule{
		Identifier:     d.String(),
		IdentifierType: IdentifierTypeDeployment,
		DecisionBasis:  DecisionBasisOffchain,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
