package repo

import (
	"context"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type FileRepository interface {
	CreateEventFile(ctx context.Context, f *model.EventFile) (int64, error)
	GetEventFileByID(ctx context.Context, id int64) (*model.EventFile, error)
	ListEventFiles(ctx context.Context, eventID int64, activeOnly bool) ([]model.EventFile, error)
	IncrementDownloadCount(ctx context.Context, id int64) error
	DeactivateEventFile(ctx context.Context, id int64) error
}

const eventFileColumns = `id, event_id, filename, original_name, mime_type, file_size, description,
	download_count, is_active, sort_order, created_at, updated_at`

func scanEventFile(row rowScanner) (*model.EventFile, error) {
	var f model.EventFile
	if err := row.Scan(
		&f.ID, &f.EventID, &f.Filename, &f.OriginalName, &f.MimeType, &f.FileSize, &f.Description,
		&f.DownloadCount, &f.IsActive, &f.SortOrder, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) CreateEventFile(ctx context.Context, f *model.EventFile) (int64, error) {
	query := `
		INSERT INTO event_files (event_id, filename, original_name, mime_type, file_size, description, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		f.EventID, f.Filename, f.OriginalName, f.MimeType, f.FileSize, f.Description, f.IsActive, f.SortOrder,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event file: %w", classify(err, nil))
	}
	return f.ID, nil
}

func (r *repository) GetEventFileByID(ctx context.Context, id int64) (*model.EventFile, error) {
	f, err := scanEventFile(r.db.QueryRowContext(ctx, `SELECT `+eventFileColumns+` FROM event_files WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, ErrFileNotFound)
	}
	return f, nil
}

func (r *repository) ListEventFiles(ctx context.Context, eventID int64, activeOnly bool) ([]model.EventFile, error) {
	query := `SELECT ` + eventFileColumns + ` FROM event_files WHERE event_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, original_name ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event files: %w", err)
	}
	defer rows.Close()

	var files []model.EventFile
	for rows.Next() {
		f, err := scanEventFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

func (r *repository) IncrementDownloadCount(ctx context.Context, id int64) error {
	res, err := r.db.Master.ExecContext(ctx, `UPDATE event_files SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (r *repository) DeactivateEventFile(ctx context.Context, id int64) error {
	res, err := r.db.Master.ExecContext(ctx, `UPDATE event_files SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate event file: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFileNotFound
	}
	return nil
}
