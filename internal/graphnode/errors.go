package graphnode

import (
	"errors"
	"fmt"
)

// Ошибки транспорта.
var (
	// ErrTimeout — вызов не уложился в таймаут.
	// По таймауту нельзя разобрать причину отказа (в т.ч. graft base).
	ErrTimeout = errors.New("rpc call timed out")

	// ErrBadResponse — ответ endpoint не является корректным JSON-RPC.
	ErrBadResponse = errors.New("malformed rpc response")
)

// RemoteError — endpoint вернул ошибку в теле ответа ({error:{code,message}}).
//
// Текст Message используется как сигнал классификации (см. Classify).
type RemoteError struct {
	Method  string
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote error %d: %s", e.Method, e.Code, e.Message)
}

// TransportError — вызов не дошёл до endpoint или ответ не удалось прочитать:
// сеть, таймаут, HTTP-ошибка без JSON-RPC тела.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsRemote извлекает RemoteError из цепочки ошибок.
func AsRemote(err error) (*RemoteError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote, true
	}
	return nil, false
}

// IsTransport возвращает true для ошибок транспорта (включая таймаут).
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
