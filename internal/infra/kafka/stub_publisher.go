package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

// StubPublisher logs audit events instead of sending them. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) PublishAuthEvent(_ context.Context, event domain.AuthEvent) error {
	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	p.logger.Info("audit event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("user_id", event.UserID),
		zap.String("token_id", event.TokenID),
		zap.Time("timestamp", at.UTC()),
	)
	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
