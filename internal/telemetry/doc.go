// Package telemetry обеспечивает наблюдаемость subgraphd.
//
// Включает:
//   - logging.go — structured logging через slog (JSON или text)
//   - metrics.go — Prometheus метрики: вызовы RPC, ensure, graft, actions
//
// Все бинарники (api, worker, reconciler) используют единый формат
// логирования и экспортируют метрики на /metrics endpoint.
package telemetry
