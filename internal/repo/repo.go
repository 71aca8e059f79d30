package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventFull             = errors.New("event is full")
	ErrEventHasDependents    = errors.New("event has attendees, agenda items, messages or files")
	ErrDuplicateSlug         = errors.New("slug already in use")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrDuplicate             = errors.New("duplicate record")
	ErrAdministratorNotFound = errors.New("administrator not found")
	ErrAttendeeNotFound      = errors.New("attendee not found")
	ErrAlreadyCheckedIn      = errors.New("attendee already checked in")
	ErrPresenterNotFound     = errors.New("presenter not found")
	ErrAgendaItemNotFound    = errors.New("agenda item not found")
	ErrMessageNotFound       = errors.New("message not found")
	ErrFileNotFound          = errors.New("file not found")
	ErrImportNotFound        = errors.New("import not found")
	ErrFeaturedNotFound      = errors.New("featured event not found")
	ErrReferenceNotFound     = errors.New("referenced record does not exist")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type Repository interface {
	EventRepository
	AdministratorRepository
	AttendeeRepository
	PresenterRepository
	AgendaRepository
	MessageRepository
	FileRepository
	ImportRepository
	FeaturedRepository
	OutboxRepository

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.Master.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Int("files", len(files)).Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.Master.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Int("files", len(files)).Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

// withTx runs fn in a master transaction, rolling back on error or panic.
func (r *repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// classify turns driver errors into the package's sentinel errors.
// notFound is returned for sql.ErrNoRows.
func classify(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pgUniqueViolation:
		switch pqErr.Constraint {
		case "uniq_events_slug":
			return ErrDuplicateSlug
		case "uniq_attendees_email", "uniq_administrators_email":
			return ErrDuplicateEmail
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", referenceError(pqErr.Constraint), pqErr.Detail)
	}
	return err
}

func referenceError(constraint string) error {
	switch constraint {
	case "attendees_event_id_fkey", "agenda_items_event_id_fkey", "messages_event_id_fkey",
		"event_files_event_id_fkey", "event_presenters_event_id_fkey", "featured_events_event_id_fkey",
		"event_administrators_event_id_fkey", "events_parent_event_id_fkey":
		return ErrEventNotFound
	case "event_presenters_presenter_id_fkey", "agenda_items_presenter_id_fkey":
		return ErrPresenterNotFound
	case "messages_sender_id_fkey":
		return ErrAttendeeNotFound
	case "messages_recipient_id_fkey", "event_imports_created_by_id_fkey",
		"featured_events_created_by_id_fkey", "event_administrators_administrator_id_fkey":
		return ErrAdministratorNotFound
	case "messages_reply_to_id_fkey":
		return ErrMessageNotFound
	}
	return ErrReferenceNotFound
}
