package port

import (
	"context"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
)

// EventRepository persists events together with their invitee and attendee sets.
type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) error
	SoftDelete(ctx context.Context, id int64) error
	AddAttendee(ctx context.Context, eventID, userID int64) error
	AddInvitee(ctx context.Context, eventID, userID int64) error
}
