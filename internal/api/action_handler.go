package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/repo"
)

// ListActions возвращает список actions с фильтрацией.
// GET /api/v1/actions?status=...&deployment=...&limit=...&offset=...
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repo.ActionFilter{
		Limit:  parseIntParam(q.Get("limit"), 50),
		Offset: parseIntParam(q.Get("offset"), 0),
	}

	if s := q.Get("status"); s != "" {
		status := domain.ParseActionStatus(s)
		if status == "" {
			BadRequest(w, "invalid status")
			return
		}
		filter.Status = status
	}

	if d := q.Get("deployment"); d != "" {
		deployment, err := domain.ParseDeploymentID(d)
		if err != nil {
			BadRequest(w, "invalid deployment")
			return
		}
		filter.Deployment = deployment
	}

	actions, err := h.actions.List(r.Context(), filter)
	if HandleError(w, h.logger, err, "") {
		return
	}

	total, err := h.actions.Count(r.Context(), filter)
	if HandleError(w, h.logger, err, "") {
		return
	}

	result := make([]ActionResponse, len(actions))
	for i, a := range actions {
		result[i] = ActionFromDomain(a)
	}

	List(w, result, total)
}

// GetAction возвращает action по ID.
// GET /api/v1/actions/{id}
func (h *Handler) GetAction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid action id")
		return
	}

	action, err := h.actions.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err, "action not found") {
		return
	}

	Success(w, ActionFromDomain(*action))
}

// parseIntParam парсит неотрицательное целое с дефолтным значением.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
