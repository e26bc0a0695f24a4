package api

import (
	"net/http"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/repo"
)

// ListRules возвращает indexing rules.
// GET /api/v1/rules?decision_basis=...
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	filter := repo.RuleFilter{}

	if b := r.URL.Query().Get("decision_basis"); b != "" {
		basis := domain.DecisionBasis(b)
		if !basis.Valid() {
			BadRequest(w, "invalid decision_basis")
			return
		}
		filter.DecisionBases = []domain.DecisionBasis{basis}
	}

	rules, err := h.rules.List(r.Context(), filter)
	if HandleError(w, h.logger, err, "") {
		return
	}

	result := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		result[i] = RuleFromDomain(*rule)
	}

	List(w, result, len(result))
}

// GetRule возвращает правило по identifier.
// GET /api/v1/rules/{identifier}
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.rules.Get(r.Context(), r.PathValue("identifier"))
	if HandleError(w, h.logger, err, "rule not found") {
		return
	}

	Success(w, RuleFromDomain(*rule))
}
