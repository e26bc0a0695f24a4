package mq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

const (
	ExchangeActions Exchange = "subgraphd.actions"
	ExchangeDLQ     Exchange = "subgraphd.dlq"

	QueueActionsQueued Queue = "actions.queued"
	QueueDLQActions    Queue = "dlq.actions"

	RoutingKeyQueued     RoutingKey = "queued"
	RoutingKeyDLQActions RoutingKey = "actions"
)

// queueSpec — очередь и её привязка.
type queueSpec struct {
	Name       Queue
	Exchange   Exchange
	RoutingKey RoutingKey
	Args       amqp.Table
	Consumer   string
}

// topology — объявляемые очереди. Exchanges выводятся из привязок.
var topology = []queueSpec{
	{
		Name:       QueueActionsQueued,
		Exchange:   ExchangeActions,
		RoutingKey: RoutingKeyQueued,
		Args: amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQActions),
		},
		Consumer: "worker",
	},
	{
		Name:       QueueDLQActions,
		Exchange:   ExchangeDLQ,
		RoutingKey: RoutingKeyDLQActions,
		Consumer:   "manual",
	},
}

// SetupTopology объявляет exchanges, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		declared := map[Exchange]bool{}

		for _, q := range topology {
			if !declared[q.Exchange] {
				if err := ch.ExchangeDeclare(string(q.Exchange), amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
					return fmt.Errorf("declare exchange %s: %w", q.Exchange, err)
				}
				declared[q.Exchange] = true
			}

			if _, err := ch.QueueDeclare(string(q.Name), true, false, false, false, q.Args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.Name, err)
			}

			if err := ch.QueueBind(string(q.Name), string(q.RoutingKey), string(q.Exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", q.Name, q.Exchange, err)
			}
		}
		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования при старте.
func TopologyInfo() string {
	var b strings.Builder
	for _, q := range topology {
		fmt.Fprintf(&b, "%s (direct) -> %s [routing: %s] consumer: %s",
			q.Exchange, q.Name, q.RoutingKey, q.Consumer)
		if dlx, ok := q.Args["x-dead-letter-exchange"]; ok {
			fmt.Fprintf(&b, " dlx: %v", dlx)
		}
		b.WriteString("\n")
	}
	return b.String()
}
