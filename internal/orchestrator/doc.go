// Package orchestrator обеспечивает развёртывание deployment на index node.
//
// Ensure выполняет шаги последовательно:
//
//	select node → create → deploy → sync rule → reassign
//
// Если deploy падает из-за отсутствующего graft base и глубина позволяет,
// Orchestrator рекурсивно обеспечивает base на depth+1, повторяет deploy
// исходного deployment и возвращает Outcome со статусом OutcomeRetryRequired:
// исходный запрос нужно вызвать повторно. Повторы выполняет вызывающий
// (worker), а не Orchestrator.
//
// Глубина передаётся явно в DeploymentRequest; Orchestrator не хранит
// изменяемого состояния и безопасен для параллельных вызовов.
package orchestrator
