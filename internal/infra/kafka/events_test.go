package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/infra/logger"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(map[string][]*sarama.PartitionOffsetMetadata, string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(*sarama.ConsumerMessage, string, *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*AuditPublisher, *fakeAsyncProducer) {
	t.Helper()
	asyncProducer := newFakeAsyncProducer()
	producer := newProducer(asyncProducer, config.KafkaSettings{TopicPrefix: "ems"}, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = producer.Close() })

	publisher := NewAuditPublisher(producer, config.AppSettings{
		Name: "event-management",
		Env:  "test",
	}, zaptest.NewLogger(t))
	return publisher, asyncProducer
}

func TestPublishAuthEvent(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	occurredAt := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	event := domain.AuthEvent{
		EventID:    "event-123",
		Type:       domain.AuthEventLoginSucceeded,
		UserID:     42,
		TokenID:    "token-abc",
		OccurredAt: occurredAt,
		Metadata:   map[string]any{"ip": "198.51.100.*"},
	}

	ctx := context.WithValue(context.Background(), logger.RequestIDKey{}, "req-1")
	if err := publisher.PublishAuthEvent(ctx, event); err != nil {
		t.Fatalf("PublishAuthEvent returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "ems.auth.login.succeeded" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil || string(key) != "42" {
			t.Fatalf("unexpected key %q (%v)", key, err)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_id"]; got != "event-123" {
			t.Fatalf("unexpected event_id: %v", got)
		}
		if got := envelope["user_id"]; got != "42" {
			t.Fatalf("unexpected user_id: %v", got)
		}
		if got := envelope["timestamp"]; got != occurredAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if payload["token_id"] != "token-abc" {
			t.Fatalf("unexpected token_id: %v", payload["token_id"])
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}
		if metadata["service"] != "event-management" || metadata["request_id"] != "req-1" {
			t.Fatalf("unexpected metadata: %v", metadata)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishAuthEventHonoursCancelledContext(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	// Fill the buffered input so the next send blocks.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishAuthEvent(ctx, domain.AuthEvent{Type: domain.AuthEventLoggedOut, UserID: 1})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTopicNameIsPrefixedOnce(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "ems"}}

	if got := producer.TopicName("auth.logout"); got != "ems.auth.logout" {
		t.Fatalf("unexpected topic %s", got)
	}
	if got := producer.TopicName("ems.auth.logout"); got != "ems.auth.logout" {
		t.Fatalf("expected prefix not to be doubled, got %s", got)
	}
}
