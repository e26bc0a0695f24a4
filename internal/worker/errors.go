package worker

import "errors"

// Ошибки воркера.
var (
	// ErrActionNotFound — action не найден в БД.
	ErrActionNotFound = errors.New("action not found")

	// ErrActionNotQueued — action не в статусе QUEUED (уже обработан другим воркером).
	ErrActionNotQueued = errors.New("action is not in QUEUED status")

	// ErrUnknownActionType — неизвестный тип action.
	ErrUnknownActionType = errors.New("unknown action type")

	// ErrGraftRetryExhausted — ensure продолжает требовать повтора после всех попыток.
	ErrGraftRetryExhausted = errors.New("graft retry attempts exhausted")
)
