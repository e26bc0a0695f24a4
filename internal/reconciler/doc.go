// Package reconciler поддерживает развёрнутыми deployments, которые
// indexing rules требуют индексировать (decision basis always/offchain).
//
// По cron-расписанию (RECONCILE_CRON) лидер ставит ENSURE action для
// каждого такого deployment без активного action. Лидерство выбирается
// через pg_try_advisory_lock (repo.AdvisoryLock), так что при нескольких
// репликах тик выполняет одна.
//
// Ensure идемпотентен: для уже развёрнутого deployment action завершится
// успешно без изменений на узлах.
package reconciler
