// Package mq — доставка deployment actions через RabbitMQ.
//
// Файлы:
//   - connection.go — соединение с reconnect
//   - topology.go   — exchanges, queues, bindings
//   - message.go    — конверт сообщения и payload'ы
//   - publisher.go  — публикация action.queued
//   - consumer.go   — потребление с ack/nack
//
// Очередь actions.queued — только уведомление: источником истины остаётся
// таблица deployment_actions, и воркер подхватывает пропущенные сообщения
// через polling.
package mq
