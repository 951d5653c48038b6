package port

import (
	"context"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// AuditPublisher publishes login/logout history events to the message bus.
type AuditPublisher interface {
	PublishAuthEvent(ctx context.Context, event domain.AuthEvent) error
}
