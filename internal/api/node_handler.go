package api

import "net/http"

// ListNodes возвращает сконфигурированный пул узлов.
// GET /api/v1/nodes
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	var pool []NodeResponse
	if h.nodes != nil {
		for _, n := range h.nodes.Pool() {
			pool = append(pool, NodeResponse{ID: n.String()})
		}
	}
	if pool == nil {
		pool = []NodeResponse{}
	}

	List(w, pool, len(pool))
}
