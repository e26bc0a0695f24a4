// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go            — Handler с DI (хранилища, publisher, пул узлов, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (recovery, request id, logging + метрики)
//   - response.go           — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                — Data Transfer Objects (request/response)
//   - deployment_handler.go — постановка ENSURE/REMOVE для /deployments
//   - action_handler.go     — просмотр /actions
//   - rule_handler.go       — просмотр /rules
//   - node_handler.go       — пул узлов /nodes
//
// API не выполняет ensure синхронно: запрос создаёт action в БД
// и публикует action.queued, выполнение — в worker.
package api
