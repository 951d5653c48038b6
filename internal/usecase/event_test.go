package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/repository"
)

func eventInput(title string, visibility domain.EventVisibility) EventInput {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	return EventInput{
		Title:      title,
		Location:   "Dhaka",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		Visibility: visibility,
	}
}

func TestEventOwnershipScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.principal(t, h.adminID)
	super := h.principal(t, h.superID)
	otherAdminID := h.addUser(t, "admin2@example.com", domain.RoleAdmin)
	otherAdmin := h.principal(t, otherAdminID)

	event, err := h.eventSvc.Create(ctx, admin, eventInput("Launch", domain.VisibilityPrivate))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if event.OrganizerID != h.adminID {
		t.Fatalf("expected organizer %d, got %d", h.adminID, event.OrganizerID)
	}

	if _, err := h.eventSvc.Update(ctx, otherAdmin, event.ID, eventInput("Hijack", domain.VisibilityPublic)); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected other admin to be forbidden, got %v", err)
	}
	updated, err := h.eventSvc.Update(ctx, admin, event.ID, eventInput("Launch v2", domain.VisibilityPrivate))
	if err != nil || updated.Title != "Launch v2" {
		t.Fatalf("expected owner update, got %+v %v", updated, err)
	}
	if _, err := h.eventSvc.Update(ctx, super, event.ID, eventInput("Moderated", domain.VisibilityPrivate)); err != nil {
		t.Fatalf("expected super admin update, got %v", err)
	}

	if err := h.eventSvc.Delete(ctx, otherAdmin, event.ID); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected delete forbidden, got %v", err)
	}
	if err := h.eventSvc.Delete(ctx, admin, event.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := h.eventSvc.Get(ctx, admin, event.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected deleted event to be gone, got %v", err)
	}
}

func TestEventCreateRequiresManageGrant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.eventSvc.Create(ctx, h.principal(t, h.attendeeA), eventInput("Party", domain.VisibilityPublic)); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected attendee to be forbidden, got %v", err)
	}
	if _, err := h.eventSvc.Create(ctx, nil, eventInput("Party", domain.VisibilityPublic)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := h.eventSvc.Create(ctx, h.principal(t, h.adminID), eventInput(" ", domain.VisibilityPublic)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
	if _, err := h.eventSvc.Create(ctx, h.principal(t, h.adminID), eventInput("Party", "SECRET")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for visibility, got %v", err)
	}
}

func TestEventVisibilityScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.principal(t, h.adminID)
	alice := h.principal(t, h.attendeeA)
	bob := h.principal(t, h.attendeeB)

	public, _ := h.eventSvc.Create(ctx, admin, eventInput("Public", domain.VisibilityPublic))
	private, _ := h.eventSvc.Create(ctx, admin, eventInput("Private", domain.VisibilityPrivate))
	invite, _ := h.eventSvc.Create(ctx, admin, eventInput("Invite", domain.VisibilityInviteOnly))

	if _, err := h.eventSvc.Invite(ctx, admin, invite.ID, h.attendeeA); err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	if _, err := h.eventSvc.Get(ctx, alice, public.ID); err != nil {
		t.Fatalf("expected public event visible, got %v", err)
	}
	if _, err := h.eventSvc.Get(ctx, alice, private.ID); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected private event forbidden, got %v", err)
	}
	if _, err := h.eventSvc.Get(ctx, alice, invite.ID); err != nil {
		t.Fatalf("expected invitee to see invite-only event, got %v", err)
	}
	if _, err := h.eventSvc.Get(ctx, bob, invite.ID); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected non-invitee forbidden, got %v", err)
	}

	listed, err := h.eventSvc.List(ctx, alice)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != public.ID || listed[1].ID != invite.ID {
		t.Fatalf("unexpected visible events %+v", listed)
	}
	all, _ := h.eventSvc.List(ctx, admin)
	if len(all) != 3 {
		t.Fatalf("expected admin to see 3 events, got %d", len(all))
	}
}

func TestEventAttendIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.principal(t, h.adminID)
	alice := h.principal(t, h.attendeeA)

	public, _ := h.eventSvc.Create(ctx, admin, eventInput("Public", domain.VisibilityPublic))
	private, _ := h.eventSvc.Create(ctx, admin, eventInput("Private", domain.VisibilityPrivate))

	for i := 0; i < 2; i++ {
		event, err := h.eventSvc.Attend(ctx, alice, public.ID)
		if err != nil {
			t.Fatalf("Attend returned error: %v", err)
		}
		if len(event.Attendees) != 1 || event.Attendees[0] != h.attendeeA {
			t.Fatalf("unexpected attendees %v", event.Attendees)
		}
	}
	if _, err := h.eventSvc.Attend(ctx, alice, private.ID); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected private attend forbidden, got %v", err)
	}
	if _, err := h.eventSvc.Attend(ctx, admin, public.ID); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected admin without event.attend forbidden, got %v", err)
	}
}

func TestEventInviteRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.principal(t, h.adminID)
	otherAdminID := h.addUser(t, "admin2@example.com", domain.RoleAdmin)

	event, _ := h.eventSvc.Create(ctx, admin, eventInput("Invite", domain.VisibilityInviteOnly))

	if _, err := h.eventSvc.Invite(ctx, h.principal(t, otherAdminID), event.ID, h.attendeeA); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected non-organizer forbidden, got %v", err)
	}
	if _, err := h.eventSvc.Invite(ctx, h.principal(t, h.attendeeA), event.ID, h.attendeeB); !errors.Is(err, ErrInsufficientPermission) {
		t.Fatalf("expected attendee forbidden, got %v", err)
	}
	if _, err := h.eventSvc.Invite(ctx, admin, event.ID, 9999); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected unknown invitee rejected, got %v", err)
	}
	invited, err := h.eventSvc.Invite(ctx, h.principal(t, h.superID), event.ID, h.attendeeB)
	if err != nil || !invited.IsInvited(h.attendeeB) {
		t.Fatalf("expected super admin invite, got %+v %v", invited, err)
	}
}
