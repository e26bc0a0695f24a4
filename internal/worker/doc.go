// Package worker выполняет deployment actions.
//
// # Обработка action
//
//  1. Получение id (action.queued из RabbitMQ или polling БД)
//  2. Загрузка action, проверка статуса QUEUED
//  3. Перевод в RUNNING, Attempt = 1
//  4. ENSURE → Deployer.Ensure с повторами; REMOVE → Deployer.Remove
//  5. SUCCEEDED (с фактическим узлом) или FAILED (с текстом ошибки)
//
// # Повторы
//
// Ensure, развернувший graft base, возвращает OutcomeRetryRequired.
// Воркер повторяет ensure того же action на том же узле после паузы:
//   - "exponential": delay = initialDelay * 2^(attempt-1), не больше maxDelay
//   - "fixed": delay = initialDelay
//
// Каждый повтор увеличивает Attempt. Если после MaxAttempts вызовов
// повтор всё ещё требуется, action завершается с ErrGraftRetryExhausted.
// Прочие ошибки Ensure не повторяются.
//
// REMOVE выполняется по принципу best effort и всегда завершается SUCCEEDED;
// отказы видны в логах.
package worker
