package mq

import "errors"

// Ошибки пакета mq.
var (
	// ErrNoChannel — канал недоступен (соединение закрыто или переподключается).
	ErrNoChannel = errors.New("amqp channel not available")

	// ErrClosed — соединение закрыто вызовом Close.
	ErrClosed = errors.New("amqp connection closed")

	// ErrMalformedMessage — сообщение нельзя разобрать; повторная доставка не поможет.
	// Handler может вернуть обёрнутую ErrMalformedMessage, чтобы отправить сообщение в DLQ.
	ErrMalformedMessage = errors.New("malformed message")
)
