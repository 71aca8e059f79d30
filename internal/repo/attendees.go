package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type AttendeeRepository interface {
	RegisterAttendee(ctx context.Context, a *model.Attendee, notify OutboxFunc) (int64, error)
	CreateAttendee(ctx context.Context, a *model.Attendee) (int64, error)
	GetAttendeeByID(ctx context.Context, id int64) (*model.Attendee, error)
	GetAttendeeByEmail(ctx context.Context, email string) (*model.Attendee, error)
	VerifyAttendeeEmail(ctx context.Context, token string) (*model.Attendee, error)
	CheckInAttendee(ctx context.Context, id int64) (*model.Attendee, error)
	ListAttendeesByEvent(ctx context.Context, eventID int64) ([]model.Attendee, error)
	CountAttendees(ctx context.Context, eventID int64) (int, error)
}

const attendeeColumns = `id, event_id, name, email, phone, organization, job_title, roles, password,
	email_verification_token, email_verified_at, is_checked_in, checked_in_at, registered_at,
	notes, badge, created_at, updated_at`

func scanAttendee(row rowScanner) (*model.Attendee, error) {
	var a model.Attendee
	if err := row.Scan(
		&a.ID, &a.EventID, &a.Name, &a.Email, &a.Phone, &a.Organization, &a.JobTitle, &a.Roles, &a.PasswordHash,
		&a.EmailVerificationToken, &a.EmailVerifiedAt, &a.IsCheckedIn, &a.CheckedInAt, &a.RegisteredAt,
		&a.Notes, &a.Badge, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func insertAttendee(ctx context.Context, q querier, a *model.Attendee) (int64, error) {
	query := `
		INSERT INTO attendees (event_id, name, email, phone, organization, job_title, roles, password,
			email_verification_token, notes, badge)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, email, registered_at, created_at, updated_at
	`
	err := q.QueryRowContext(ctx, query,
		a.EventID, a.Name, a.Email, a.Phone, a.Organization, a.JobTitle, a.Roles, a.PasswordHash,
		a.EmailVerificationToken, a.Notes, a.Badge,
	).Scan(&a.ID, &a.Email, &a.RegisteredAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return 0, classify(err, nil)
	}
	return a.ID, nil
}

// RegisterAttendee inserts a registration while holding the event row, so the capacity
// check and the insert cannot interleave with another registration for the same event.
func (r *repository) RegisterAttendee(ctx context.Context, a *model.Attendee, notify OutboxFunc) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			isActive     bool
			maxAttendees sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT is_active, max_attendees
			FROM events
			WHERE id = $1
			FOR UPDATE
		`, a.EventID).Scan(&isActive, &maxAttendees)
		if err != nil {
			return classify(err, ErrEventNotFound)
		}
		if !isActive {
			return ErrEventNotFound
		}

		if maxAttendees.Valid {
			var count int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees WHERE event_id = $1`, a.EventID).Scan(&count); err != nil {
				return fmt.Errorf("failed to count attendees: %w", err)
			}
			if int64(count) >= maxAttendees.Int64 {
				return ErrEventFull
			}
		}

		id, err = insertAttendee(ctx, tx, a)
		if err != nil {
			return err
		}

		return enqueueWithin(ctx, tx, notify, id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) CreateAttendee(ctx context.Context, a *model.Attendee) (int64, error) {
	id, err := insertAttendee(ctx, r.db.Master, a)
	if err != nil {
		return 0, fmt.Errorf("failed to insert attendee: %w", err)
	}
	return id, nil
}

func (r *repository) GetAttendeeByID(ctx context.Context, id int64) (*model.Attendee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id)
	a, err := scanAttendee(row)
	if err != nil {
		return nil, classify(err, ErrAttendeeNotFound)
	}
	return a, nil
}

func (r *repository) GetAttendeeByEmail(ctx context.Context, email string) (*model.Attendee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE email = lower($1)`, email)
	a, err := scanAttendee(row)
	if err != nil {
		return nil, classify(err, ErrAttendeeNotFound)
	}
	return a, nil
}

func (r *repository) VerifyAttendeeEmail(ctx context.Context, token string) (*model.Attendee, error) {
	row := r.db.Master.QueryRowContext(ctx, `
		UPDATE attendees
		SET email_verified_at = NOW(), email_verification_token = NULL, updated_at = NOW()
		WHERE email_verification_token = $1
		RETURNING `+attendeeColumns, token)
	a, err := scanAttendee(row)
	if err != nil {
		return nil, classify(err, ErrAttendeeNotFound)
	}
	return a, nil
}

func (r *repository) CheckInAttendee(ctx context.Context, id int64) (*model.Attendee, error) {
	var out *model.Attendee
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		a, err := scanAttendee(tx.QueryRowContext(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return classify(err, ErrAttendeeNotFound)
		}
		if a.IsCheckedIn {
			return ErrAlreadyCheckedIn
		}

		out, err = scanAttendee(tx.QueryRowContext(ctx, `
			UPDATE attendees
			SET is_checked_in = TRUE, checked_in_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING `+attendeeColumns, id))
		if err != nil {
			return fmt.Errorf("failed to check in attendee: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListAttendeesByEvent(ctx context.Context, eventID int64) ([]model.Attendee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+attendeeColumns+`
		FROM attendees
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, *a)
	}
	return attendees, rows.Err()
}

func (r *repository) CountAttendees(ctx context.Context, eventID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees WHERE event_id = $1`, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}
