package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type ImportRepository interface {
	CreateImport(ctx context.Context, imp *model.EventImport, notify OutboxFunc) (int64, error)
	GetImportByID(ctx context.Context, id int64) (*model.EventImport, error)
	ListImports(ctx context.Context, limit int) ([]model.EventImport, error)
	// MarkImportProcessing moves a pending import to processing. It returns false
	// when the import was already picked up.
	MarkImportProcessing(ctx context.Context, id int64) (bool, error)
	// ReleaseImport moves a processing import back to pending.
	ReleaseImport(ctx context.Context, id int64) error
	CompleteImport(ctx context.Context, imp *model.EventImport) error
}

const importColumns = `id, created_by_id, filename, original_name, status, import_type, total_rows,
	successful_rows, failed_rows, results, errors, imported_data, processed_at, created_at, updated_at`

func scanImport(row rowScanner) (*model.EventImport, error) {
	var imp model.EventImport
	if err := row.Scan(
		&imp.ID, &imp.CreatedByID, &imp.Filename, &imp.OriginalName, &imp.Status, &imp.ImportType, &imp.TotalRows,
		&imp.SuccessfulRows, &imp.FailedRows, &imp.Results, &imp.Errors, &imp.ImportedData, &imp.ProcessedAt,
		&imp.CreatedAt, &imp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *repository) CreateImport(ctx context.Context, imp *model.EventImport, notify OutboxFunc) (int64, error) {
	if imp.Status == "" {
		imp.Status = model.ImportPending
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO event_imports (created_by_id, filename, original_name, status, import_type)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, imp.CreatedByID, imp.Filename, imp.OriginalName, imp.Status, imp.ImportType).
			Scan(&imp.ID, &imp.CreatedAt, &imp.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert import: %w", classify(err, nil))
		}
		return enqueueWithin(ctx, tx, notify, imp.ID)
	})
	if err != nil {
		return 0, err
	}
	return imp.ID, nil
}

func (r *repository) GetImportByID(ctx context.Context, id int64) (*model.EventImport, error) {
	imp, err := scanImport(r.db.QueryRowContext(ctx, `SELECT `+importColumns+` FROM event_imports WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, ErrImportNotFound)
	}
	return imp, nil
}

func (r *repository) ListImports(ctx context.Context, limit int) ([]model.EventImport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+importColumns+`
		FROM event_imports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get imports: %w", err)
	}
	defer rows.Close()

	var imports []model.EventImport
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		imports = append(imports, *imp)
	}
	return imports, rows.Err()
}

func (r *repository) ReleaseImport(ctx context.Context, id int64) error {
	_, err := r.db.Master.ExecContext(ctx, `
		UPDATE event_imports
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, model.ImportPending, model.ImportProcessing)
	if err != nil {
		return fmt.Errorf("failed to release import %d: %w", id, err)
	}
	return nil
}

func (r *repository) MarkImportProcessing(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.Master.ExecContext(ctx, `
		UPDATE event_imports
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, model.ImportProcessing, model.ImportPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark import processing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark import processing: %w", err)
	}
	if n == 0 {
		if _, err := r.GetImportByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (r *repository) CompleteImport(ctx context.Context, imp *model.EventImport) error {
	err := r.db.Master.QueryRowContext(ctx, `
		UPDATE event_imports
		SET status = $2,
			total_rows = $3,
			successful_rows = $4,
			failed_rows = $5,
			results = $6,
			errors = $7,
			imported_data = $8,
			processed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
		RETURNING processed_at, updated_at
	`, imp.ID, imp.Status, imp.TotalRows, imp.SuccessfulRows, imp.FailedRows,
		imp.Results, imp.Errors, imp.ImportedData,
	).Scan(&imp.ProcessedAt, &imp.UpdatedAt)
	if err != nil {
		return classify(err, ErrImportNotFound)
	}
	return nil
}
