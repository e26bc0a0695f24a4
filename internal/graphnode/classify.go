package graphnode

import (
	"errors"
	"strings"
)

// GraftBaseMissingSignature — подстрока ошибки deploy, означающая, что
// объявленный graft base deployment отсутствует на всех узлах.
const GraftBaseMissingSignature = "the graft base is invalid: deployment not found"

// Kind — класс ошибки node-management endpoint.
type Kind int

const (
	// KindNone — ошибки нет.
	KindNone Kind = iota

	// KindAlreadyExists — имя subgraph уже зарегистрировано (create).
	KindAlreadyExists

	// KindNotFound — объект не найден.
	KindNotFound

	// KindUnchanged — deployment уже назначен на запрошенный узел (reassign).
	KindUnchanged

	// KindGraftBaseMissing — deploy упал из-за отсутствующего graft base.
	KindGraftBaseMissing

	// KindRemote — прочая ошибка от endpoint.
	KindRemote

	// KindTimeout — вызов не уложился в таймаут.
	KindTimeout

	// KindTransport — прочая ошибка транспорта.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindUnchanged:
		return "unchanged"
	case KindGraftBaseMissing:
		return "graft_base_missing"
	case KindRemote:
		return "remote"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Classify определяет класс ошибки.
//
// Вся зависимость от формулировок сообщений endpoint сосредоточена здесь.
// Сигнатура graft base проверяется раньше "not found", так как содержит её.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	if errors.Is(err, ErrTimeout) {
		return KindTimeout
	}
	if IsTransport(err) {
		return KindTransport
	}

	msg := err.Error()
	if remote, ok := AsRemote(err); ok {
		msg = remote.Message
	}

	return ClassifyMessage(msg)
}

// ClassifyMessage классифицирует текст ошибки endpoint.
func ClassifyMessage(msg string) Kind {
	switch {
	case strings.Contains(msg, GraftBaseMissingSignature):
		return KindGraftBaseMissing
	case strings.Contains(msg, "already exists"):
		return KindAlreadyExists
	case strings.Contains(msg, "unchanged"):
		return KindUnchanged
	case strings.Contains(msg, "not found"):
		return KindNotFound
	default:
		return KindRemote
	}
}
