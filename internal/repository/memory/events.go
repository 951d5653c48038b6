package memory

import (
	"context"
	"sort"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

// EventRepository stores events with their invitee and attendee sets.
// Soft-deleted events are invisible to every read.
type EventRepository struct{ s *store }

func (r *EventRepository) Create(_ context.Context, event domain.Event) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = r.s.id()
	event.Deleted = false
	event.CreatedAt = r.s.now()
	event.UpdatedAt = event.CreatedAt
	event.Invitees = append([]int64(nil), event.Invitees...)
	event.Attendees = append([]int64(nil), event.Attendees...)
	r.s.events[event.ID] = event
	return event.ID, nil
}

func (r *EventRepository) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok || e.Deleted {
		return nil, repository.ErrNotFound
	}
	e = cloneEvent(e)
	return &e, nil
}

func (r *EventRepository) List(_ context.Context) ([]domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		if !e.Deleted {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces the editable fields; membership sets are left alone.
func (r *EventRepository) Update(_ context.Context, event domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[event.ID]
	if !ok || e.Deleted {
		return repository.ErrNotFound
	}
	e.Title = event.Title
	e.Description = event.Description
	e.Location = event.Location
	e.StartTime = event.StartTime
	e.EndTime = event.EndTime
	e.Visibility = event.Visibility
	e.UpdatedAt = r.s.now()
	r.s.events[event.ID] = e
	return nil
}

func (r *EventRepository) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.Deleted {
		return repository.ErrNotFound
	}
	e.Deleted = true
	e.UpdatedAt = r.s.now()
	r.s.events[id] = e
	return nil
}

func (r *EventRepository) AddAttendee(_ context.Context, eventID, userID int64) error {
	return r.addMember(eventID, func(e *domain.Event) {
		if !e.IsAttending(userID) {
			e.Attendees = append(e.Attendees, userID)
		}
	})
}

func (r *EventRepository) AddInvitee(_ context.Context, eventID, userID int64) error {
	return r.addMember(eventID, func(e *domain.Event) {
		if !e.IsInvited(userID) {
			e.Invitees = append(e.Invitees, userID)
		}
	})
}

func (r *EventRepository) addMember(eventID int64, add func(*domain.Event)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok || e.Deleted {
		return repository.ErrNotFound
	}
	add(&e)
	r.s.events[eventID] = e
	return nil
}

func cloneEvent(e domain.Event) domain.Event {
	e.Invitees = append([]int64(nil), e.Invitees...)
	e.Attendees = append([]int64(nil), e.Attendees...)
	return e
}
