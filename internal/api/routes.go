package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		RequestID(h.logger),
		Logging(h.logger),
	)

	// Deployments
	mux.Handle("POST /api/v1/deployments", chain(http.HandlerFunc(h.EnsureDeployment)))
	mux.Handle("DELETE /api/v1/deployments/{deployment}", chain(http.HandlerFunc(h.RemoveDeployment)))

	// Actions
	mux.Handle("GET /api/v1/actions", chain(http.HandlerFunc(h.ListActions)))
	mux.Handle("GET /api/v1/actions/{id}", chain(http.HandlerFunc(h.GetAction)))

	// Rules
	mux.Handle("GET /api/v1/rules", chain(http.HandlerFunc(h.ListRules)))
	mux.Handle("GET /api/v1/rules/{identifier}", chain(http.HandlerFunc(h.GetRule)))

	// Nodes
	mux.Handle("GET /api/v1/nodes", chain(http.HandlerFunc(h.ListNodes)))
}
