package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/shakibbs/Event-Backend/internal/core/domain"
	"github.com/shakibbs/Event-Backend/internal/core/port"
)

var eventColumns = []string{
	"id",
	"title",
	"description",
	"location",
	"start_time",
	"end_time",
	"visibility",
	"organizer_id",
	"deleted",
	"created_at",
	"updated_at",
}

// EventRepository persists events and their invitee and attendee sets.
type EventRepository struct {
	base
}

// NewEventRepository constructs a PostgreSQL-backed event repository.
func NewEventRepository(exec pgExecutor, schema string) *EventRepository {
	return &EventRepository{base: newBase(exec, schema)}
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *EventRepository) WithTx(tx pgx.Tx) *EventRepository {
	if tx == nil {
		return r
	}
	clone := *r
	clone.exec = tx
	return &clone
}

// Create inserts the event row and returns its id. Member sets are written separately.
func (r *EventRepository) Create(ctx context.Context, event domain.Event) (int64, error) {
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = event.CreatedAt
	}

	stmt, args, err := r.builder.Insert(r.table("events")).
		Columns("title", "description", "location", "start_time", "end_time", "visibility", "organizer_id", "deleted", "created_at", "updated_at").
		Values(
			event.Title,
			event.Description,
			event.Location,
			event.StartTime,
			event.EndTime,
			string(event.Visibility),
			event.OrganizerID,
			false,
			event.CreatedAt,
			event.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert event sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, translate(err, "insert event")
	}
	return id, nil
}

// GetByID loads a live event together with its members.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	stmt, args, err := r.builder.Select(eventColumns...).
		From(r.table("events")).
		Where(squirrel.Eq{"id": id, "deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select event sql: %w", err)
	}

	event, err := scanEvent(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, translate(err, "select event")
	}

	events := []domain.Event{*event}
	if err := r.loadMembers(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// List returns live events ordered by start time, members included.
func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	stmt, args, err := r.builder.Select(eventColumns...).
		From(r.table("events")).
		Where(squirrel.Eq{"deleted": false}).
		OrderBy("start_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translate(err, "query events")
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	rows.Close()

	if err := r.loadMembers(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// Update rewrites the mutable columns of a live event.
func (r *EventRepository) Update(ctx context.Context, event domain.Event) error {
	stmt, args, err := r.builder.Update(r.table("events")).
		Set("title", event.Title).
		Set("description", event.Description).
		Set("location", event.Location).
		Set("start_time", event.StartTime).
		Set("end_time", event.EndTime).
		Set("visibility", string(event.Visibility)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": event.ID, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update event sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "update event")
	}
	return affectedOrNotFound(tag)
}

// SoftDelete flags the event as deleted.
func (r *EventRepository) SoftDelete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Update(r.table("events")).
		Set("deleted", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete event sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return translate(err, "soft delete event")
	}
	return affectedOrNotFound(tag)
}

func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID int64) error {
	return r.addMember(ctx, "event_attendees", eventID, userID)
}

func (r *EventRepository) AddInvitee(ctx context.Context, eventID, userID int64) error {
	return r.addMember(ctx, "event_invitees", eventID, userID)
}

func (r *EventRepository) addMember(ctx context.Context, table string, eventID, userID int64) error {
	stmt, args, err := r.builder.Insert(r.table(table)).
		Columns("event_id", "user_id").
		Values(eventID, userID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s sql: %w", table, err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return translate(err, "insert "+table)
	}
	return nil
}

// loadMembers fills Invitees and Attendees for the given events in place.
func (r *EventRepository) loadMembers(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, len(events))
	index := make(map[int64]int, len(events))
	for i, event := range events {
		ids[i] = event.ID
		index[event.ID] = i
	}

	invitees, err := r.members(ctx, "event_invitees", ids)
	if err != nil {
		return err
	}
	attendees, err := r.members(ctx, "event_attendees", ids)
	if err != nil {
		return err
	}

	for eventID, users := range invitees {
		events[index[eventID]].Invitees = users
	}
	for eventID, users := range attendees {
		events[index[eventID]].Attendees = users
	}
	return nil
}

func (r *EventRepository) members(ctx context.Context, table string, eventIDs []int64) (map[int64][]int64, error) {
	stmt, args, err := r.builder.Select("event_id", "user_id").
		From(r.table(table)).
		Where(squirrel.Eq{"event_id": eventIDs}).
		OrderBy("event_id ASC", "user_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s sql: %w", table, err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, translate(err, "query "+table)
	}
	defer rows.Close()

	result := make(map[int64][]int64)
	for rows.Next() {
		var eventID, userID int64
		if err := rows.Scan(&eventID, &userID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		result[eventID] = append(result[eventID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return result, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		event      domain.Event
		visibility string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&visibility,
		&event.OrganizerID,
		&event.Deleted,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.Visibility = domain.EventVisibility(visibility)
	return &event, nil
}

var _ port.EventRepository = (*EventRepository)(nil)
