package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
	"github.com/shakibbs/Event-Backend/internal/infra/config"
	"github.com/shakibbs/Event-Backend/internal/infra/logger"
)

const schemaVersion = "1.0"

// AuditPublisher implements port.AuditPublisher on top of Kafka.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewAuditPublisher constructs a Kafka-backed audit publisher.
func NewAuditPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *AuditPublisher {
	return &AuditPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type authPayload struct {
	TokenID  string         `json:"token_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PublishAuthEvent enqueues the event; the key is the user id so a user's history stays ordered.
func (p *AuditPublisher) PublishAuthEvent(ctx context.Context, event domain.AuthEvent) error {
	envelope := buildEnvelope(ctx, event, p.appCfg)

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(string(event.Type)),
		Key:   sarama.StringEncoder(envelope.UserID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildEnvelope(ctx context.Context, event domain.AuthEvent, appCfg config.AppSettings) eventEnvelope {
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	id := event.EventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := map[string]string{
		"service":     appCfg.Name,
		"environment": appCfg.Env,
	}
	if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
		metadata["request_id"] = requestID
	}

	var userID string
	if event.UserID != 0 {
		userID = strconv.FormatInt(event.UserID, 10)
	}

	return eventEnvelope{
		EventID:   id,
		EventType: string(event.Type),
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   authPayload{TokenID: event.TokenID, Metadata: event.Metadata},
		Metadata:  metadata,
	}
}

var _ port.AuditPublisher = (*AuditPublisher)(nil)
