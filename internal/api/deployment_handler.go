package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/telemetry"
)

// EnsureDeployment ставит ENSURE action в очередь.
// POST /api/v1/deployments
func (h *Handler) EnsureDeployment(w http.ResponseWriter, r *http.Request) {
	var req EnsureDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	deployment, err := domain.ParseDeploymentID(req.Deployment)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	action := domain.NewEnsureAction(req.Name, deployment, domain.NodeID(req.Node))
	h.enqueue(w, r, action)
}

// RemoveDeployment ставит REMOVE action в очередь.
// DELETE /api/v1/deployments/{deployment}
func (h *Handler) RemoveDeployment(w http.ResponseWriter, r *http.Request) {
	deployment, err := domain.ParseDeploymentID(r.PathValue("deployment"))
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	h.enqueue(w, r, domain.NewRemoveAction(deployment))
}

// enqueue сохраняет action и публикует action.queued.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, action *domain.Action) {
	if err := h.actions.Create(r.Context(), action); err != nil {
		HandleError(w, h.logger, err, "")
		return
	}

	logger := telemetry.FromContext(r.Context())
	logger.Info("action queued",
		"action_id", action.ID,
		"type", action.Type,
		"deployment", action.Deployment,
		"name", action.Name,
		"node", action.Node,
	)

	// Публикуем событие в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishActionQueued(r.Context(), action); err != nil {
			logger.Warn("failed to publish action.queued", "action_id", action.ID, "error", err)
		}
	}

	Accepted(w, ActionFromDomain(*action))
}
