package domain

// ActionStatus — статус action.
//
// Жизненный цикл:
//
//	QUEUED → RUNNING → SUCCEEDED
//	                 ↘ FAILED
type ActionStatus string

const (
	// ActionStatusQueued — action в очереди, ожидает воркера.
	ActionStatusQueued ActionStatus = "QUEUED"

	// ActionStatusRunning — action выполняется воркером.
	ActionStatusRunning ActionStatus = "RUNNING"

	// ActionStatusSucceeded — action успешно завершён.
	ActionStatusSucceeded ActionStatus = "SUCCEEDED"

	// ActionStatusFailed — action завершился с ошибкой.
	ActionStatusFailed ActionStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case ActionStatusSucceeded, ActionStatusFailed:
		return true
	default:
		return false
	}
}

// IsActive возвращает true, если action ещё не завершён.
func (s ActionStatus) IsActive() bool {
	return s == ActionStatusQueued || s == ActionStatusRunning
}

// String возвращает строковое представление ActionStatus.
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus парсит строку в ActionStatus.
// Возвращает пустой статус для неизвестного значения.
func ParseActionStatus(s string) ActionStatus {
	switch s {
	case "QUEUED":
		return ActionStatusQueued
	case "RUNNING":
		return ActionStatusRunning
	case "SUCCEEDED":
		return ActionStatusSucceeded
	case "FAILED":
		return ActionStatusFailed
	default:
		return ""
	}
}
