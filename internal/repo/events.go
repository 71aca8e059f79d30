package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*model.Event, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]model.Event, error)
	ListChildEvents(ctx context.Context, parentID int64) ([]model.Event, error)
	CreateOccurrences(ctx context.Context, events []model.Event) ([]int64, error)
	DeleteEvent(ctx context.Context, id int64, force bool) error
	SlugTaken(ctx context.Context, slug string) (bool, error)
	AssignAdministrator(ctx context.Context, eventID, administratorID int64) error
	ListEventAdministrators(ctx context.Context, eventID int64) ([]model.Administrator, error)
	IsEventAdministrator(ctx context.Context, eventID, administratorID int64) (bool, error)
}

const eventColumns = `id, title, description, start_date, end_date, location, slug, is_active,
	max_attendees, banner_image, parent_event_id, recurrence_pattern, recurrence_interval,
	recurrence_end_date, recurrence_occurrences, created_at, updated_at`

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Location, &e.Slug, &e.IsActive,
		&e.MaxAttendees, &e.BannerImage, &e.ParentEventID, &e.RecurrencePattern, &e.RecurrenceInterval,
		&e.RecurrenceEndDate, &e.RecurrenceOccurrences, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func insertEvent(ctx context.Context, q querier, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (title, description, start_date, end_date, location, slug, is_active,
			max_attendees, banner_image, parent_event_id, recurrence_pattern, recurrence_interval,
			recurrence_end_date, recurrence_occurrences)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	var id int64
	err := q.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Location, e.Slug, e.IsActive,
		e.MaxAttendees, e.BannerImage, e.ParentEventID, e.RecurrencePattern, e.RecurrenceInterval,
		e.RecurrenceEndDate, e.RecurrenceOccurrences,
	).Scan(&id, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return 0, classify(err, nil)
	}
	e.ID = id
	return id, nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	id, err := insertEvent(ctx, r.db.Master, e)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, start_date = $3, end_date = $4, location = $5, slug = $6,
			is_active = $7, max_attendees = $8, banner_image = $9, recurrence_pattern = $10,
			recurrence_interval = $11, recurrence_end_date = $12, recurrence_occurrences = $13,
			updated_at = NOW()
		WHERE id = $14
		RETURNING updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.Location, e.Slug,
		e.IsActive, e.MaxAttendees, e.BannerImage, e.RecurrencePattern,
		e.RecurrenceInterval, e.RecurrenceEndDate, e.RecurrenceOccurrences,
		e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", classify(err, ErrEventNotFound))
	}
	return nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, classify(err, ErrEventNotFound)
	}
	return e, nil
}

func (r *repository) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)
	e, err := scanEvent(row)
	if err != nil {
		return nil, classify(err, ErrEventNotFound)
	}
	return e, nil
}

func (r *repository) ListEvents(ctx context.Context, activeOnly bool) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if activeOnly {
		query += ` WHERE is_active = TRUE AND end_date >= NOW()`
	}
	query += ` ORDER BY start_date ASC`

	return r.queryEvents(ctx, query)
}

func (r *repository) ListChildEvents(ctx context.Context, parentID int64) ([]model.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE parent_event_id = $1 ORDER BY start_date ASC`,
		parentID,
	)
}

func (r *repository) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

func (r *repository) CreateOccurrences(ctx context.Context, events []model.Event) ([]int64, error) {
	ids := make([]int64, 0, len(events))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for i := range events {
			id, err := insertEvent(ctx, tx, &events[i])
			if err != nil {
				return fmt.Errorf("failed to insert occurrence %s: %w", events[i].Slug, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteEvent removes an event. Attendees, agenda items, messages and files reference
// events without ON DELETE rules, so unless force is set their presence aborts the delete.
// With force they are removed first, in dependency order, inside the same transaction.
func (r *repository) DeleteEvent(ctx context.Context, id int64, force bool) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var locked int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return classify(err, ErrEventNotFound)
		}

		var dependents int
		err := tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM attendees WHERE event_id = $1) +
				(SELECT COUNT(*) FROM agenda_items WHERE event_id = $1) +
				(SELECT COUNT(*) FROM messages WHERE event_id = $1) +
				(SELECT COUNT(*) FROM event_files WHERE event_id = $1)
		`, id).Scan(&dependents)
		if err != nil {
			return fmt.Errorf("failed to count event dependents: %w", err)
		}
		if dependents > 0 && !force {
			return ErrEventHasDependents
		}

		cleanup := []string{
			`DELETE FROM messages WHERE event_id = $1`,
			`DELETE FROM agenda_items WHERE event_id = $1`,
			`DELETE FROM event_presenters WHERE event_id = $1`,
			`DELETE FROM event_files WHERE event_id = $1`,
			`DELETE FROM attendees WHERE event_id = $1`,
			`DELETE FROM events WHERE id = $1`,
		}
		for _, stmt := range cleanup {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete event %d: %w", id, classify(err, nil))
			}
		}
		return nil
	})
}

func (r *repository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE lower(slug) = lower($1))`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *repository) AssignAdministrator(ctx context.Context, eventID, administratorID int64) error {
	_, err := r.db.Master.ExecContext(ctx, `
		INSERT INTO event_administrators (event_id, administrator_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, eventID, administratorID)
	if err != nil {
		return fmt.Errorf("failed to assign administrator: %w", classify(err, nil))
	}
	return nil
}

func (r *repository) ListEventAdministrators(ctx context.Context, eventID int64) ([]model.Administrator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prefixed("a", administratorColumns)+`
		FROM administrators a
		JOIN event_administrators ea ON ea.administrator_id = a.id
		WHERE ea.event_id = $1
		ORDER BY a.name ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event administrators: %w", err)
	}
	defer rows.Close()

	var admins []model.Administrator
	for rows.Next() {
		a, err := scanAdministrator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan administrator: %w", err)
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

func (r *repository) IsEventAdministrator(ctx context.Context, eventID, administratorID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM event_administrators WHERE event_id = $1 AND administrator_id = $2
		)
	`, eventID, administratorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event administrator: %w", err)
	}
	return exists, nil
}
