package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Subgraphd/internal/domain"
)

// fakeAcknowledger записывает ack/nack.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func newTestConsumer(h Handler) *Consumer {
	return NewConsumer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), ConsumerConfig{
		Queue:   QueueActionsQueued,
		Handler: h,
	})
}

func actionQueuedBody(t *testing.T) []byte {
	t.Helper()
	msg, err := NewMessage(MessageTypeActionQueued, ActionQueuedPayload{
		ActionID:   uuid.New(),
		Type:       domain.ActionTypeEnsure,
		Deployment: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestConsumer_HandleDelivery(t *testing.T) {
	tests := []struct {
		name        string
		body        func(t *testing.T) []byte
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{"success", actionQueuedBody, nil, true, false},
		{"handler error requeues", actionQueuedBody, errors.New("db down"), false, true},
		{"malformed from handler to DLQ", actionQueuedBody, fmt.Errorf("bad: %w", ErrMalformedMessage), false, false},
		{"invalid json to DLQ", func(*testing.T) []byte { return []byte("{not json") }, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			c := newTestConsumer(func(ctx context.Context, msg *Message) error {
				called = true
				if msg.Type != MessageTypeActionQueued {
					t.Errorf("unexpected type %s", msg.Type)
				}
				return tt.handlerErr
			})

			ack := &fakeAcknowledger{}
			c.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: tt.body(t)})

			if ack.acked != tt.wantAck {
				t.Errorf("acked = %v, want %v", ack.acked, tt.wantAck)
			}
			if !tt.wantAck && !ack.nacked {
				t.Error("expected nack")
			}
			if ack.requeue != tt.wantRequeue {
				t.Errorf("requeue = %v, want %v", ack.requeue, tt.wantRequeue)
			}
			if tt.name == "invalid json to DLQ" && called {
				t.Error("handler should not be called for invalid message")
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	id := uuid.New()
	msg, err := NewMessage(MessageTypeActionQueued, ActionQueuedPayload{
		ActionID:   id,
		Type:       domain.ActionTypeRemove,
		Deployment: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := json.Marshal(msg)
	decoded, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	payload, err := ParsePayload[ActionQueuedPayload](decoded)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.ActionID != id || payload.Type != domain.ActionTypeRemove {
		t.Errorf("unexpected payload: %+v", payload)
	}

	// Проверяем имена полей на проводе
	var wire map[string]any
	json.Unmarshal(decoded.Payload, &wire)
	for _, key := range []string{"action_id", "type", "deployment"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("payload missing %q: %s", key, decoded.Payload)
		}
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	for _, body := range []string{"", "[]", `{"id":"x"}`} {
		if _, err := DecodeMessage([]byte(body)); !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("DecodeMessage(%q): expected ErrMalformedMessage, got %v", body, err)
		}
	}

	msg := &Message{Type: MessageTypeActionQueued}
	if _, err := ParsePayload[ActionQueuedPayload](msg); !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("empty payload: expected ErrMalformedMessage, got %v", err)
	}
}

func TestTopologyInfo(t *testing.T) {
	info := TopologyInfo()
	for _, want := range []string{"subgraphd.actions", "actions.queued", "queued", "dlq.actions"} {
		if !strings.Contains(info, want) {
			t.Errorf("topology info missing %q:\n%s", want, info)
		}
	}
}
