package domain

import "time"

// EventVisibility controls who may read an event.
type EventVisibility string

const (
	VisibilityPublic     EventVisibility = "PUBLIC"
	VisibilityPrivate    EventVisibility = "PRIVATE"
	VisibilityInviteOnly EventVisibility = "INVITE_ONLY"
)

// Valid reports whether the visibility is a known value.
func (v EventVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityInviteOnly:
		return true
	default:
		return false
	}
}

// Event is an organizer-owned resource.
type Event struct {
	ID          int64
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Visibility  EventVisibility
	OrganizerID int64
	Invitees    []int64
	Attendees   []int64
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID returns the organizer identifier.
func (e Event) OwnerID() int64 {
	return e.OrganizerID
}

// ResourceVisibility returns the event visibility.
func (e Event) ResourceVisibility() EventVisibility {
	return e.Visibility
}

// IsInvited reports whether the user belongs to the invitee set.
func (e Event) IsInvited(userID int64) bool {
	for _, id := range e.Invitees {
		if id == userID {
			return true
		}
	}
	return false
}

// IsAttending reports whether the user already attends the event.
func (e Event) IsAttending(userID int64) bool {
	for _, id := range e.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}
