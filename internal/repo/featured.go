package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/lib/pq"
)

type FeaturedRepository interface {
	CreateFeatured(ctx context.Context, f *model.FeaturedEvent) (int64, error)
	UpdateFeatured(ctx context.Context, f *model.FeaturedEvent) error
	GetFeaturedByID(ctx context.Context, id int64) (*model.FeaturedEvent, error)
	ListFeatured(ctx context.Context) ([]model.FeaturedEvent, error)
	// ListActiveFeatured returns banners whose window contains now, highest priority first.
	// An empty displayType matches every display type.
	ListActiveFeatured(ctx context.Context, now time.Time, displayType string) ([]model.FeaturedEvent, error)
	RecordFeaturedViews(ctx context.Context, ids []int64) error
	RecordFeaturedClick(ctx context.Context, id int64) (*model.FeaturedEvent, error)
}

const featuredColumns = `id, event_id, created_by_id, title, description, image_url, link_url, link_text,
	priority, is_active, start_date, end_date, display_type, display_settings, view_count, click_count,
	created_at, updated_at`

func scanFeatured(row rowScanner) (*model.FeaturedEvent, error) {
	var f model.FeaturedEvent
	if err := row.Scan(
		&f.ID, &f.EventID, &f.CreatedByID, &f.Title, &f.Description, &f.ImageURL, &f.LinkURL, &f.LinkText,
		&f.Priority, &f.IsActive, &f.StartDate, &f.EndDate, &f.DisplayType, &f.DisplaySettings, &f.ViewCount, &f.ClickCount,
		&f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) CreateFeatured(ctx context.Context, f *model.FeaturedEvent) (int64, error) {
	query := `
		INSERT INTO featured_events (event_id, created_by_id, title, description, image_url, link_url, link_text,
			priority, is_active, start_date, end_date, display_type, display_settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		f.EventID, f.CreatedByID, f.Title, f.Description, f.ImageURL, f.LinkURL, f.LinkText,
		f.Priority, f.IsActive, f.StartDate, f.EndDate, f.DisplayType, f.DisplaySettings,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert featured event: %w", classify(err, nil))
	}
	return f.ID, nil
}

func (r *repository) UpdateFeatured(ctx context.Context, f *model.FeaturedEvent) error {
	query := `
		UPDATE featured_events
		SET event_id = $2, title = $3, description = $4, image_url = $5, link_url = $6, link_text = $7,
			priority = $8, is_active = $9, start_date = $10, end_date = $11, display_type = $12,
			display_settings = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		f.ID, f.EventID, f.Title, f.Description, f.ImageURL, f.LinkURL, f.LinkText,
		f.Priority, f.IsActive, f.StartDate, f.EndDate, f.DisplayType, f.DisplaySettings,
	).Scan(&f.UpdatedAt)
	if err != nil {
		return classify(err, ErrFeaturedNotFound)
	}
	return nil
}

func (r *repository) GetFeaturedByID(ctx context.Context, id int64) (*model.FeaturedEvent, error) {
	f, err := scanFeatured(r.db.QueryRowContext(ctx, `SELECT `+featuredColumns+` FROM featured_events WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, ErrFeaturedNotFound)
	}
	return f, nil
}

func (r *repository) ListFeatured(ctx context.Context) ([]model.FeaturedEvent, error) {
	return r.queryFeatured(ctx, `SELECT `+featuredColumns+` FROM featured_events ORDER BY priority DESC, created_at DESC`)
}

func (r *repository) ListActiveFeatured(ctx context.Context, now time.Time, displayType string) ([]model.FeaturedEvent, error) {
	return r.queryFeatured(ctx, `
		SELECT `+featuredColumns+`
		FROM featured_events
		WHERE is_active = TRUE
			AND (start_date IS NULL OR start_date <= $1)
			AND (end_date IS NULL OR end_date >= $1)
			AND ($2 = '' OR display_type = $2)
		ORDER BY priority DESC, created_at DESC
	`, now, displayType)
}

func (r *repository) queryFeatured(ctx context.Context, query string, args ...any) ([]model.FeaturedEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured events: %w", err)
	}
	defer rows.Close()

	var out []model.FeaturedEvent
	for rows.Next() {
		f, err := scanFeatured(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan featured event: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// RecordFeaturedViews bumps view_count for every banner that was rendered.
func (r *repository) RecordFeaturedViews(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Master.ExecContext(ctx,
		`UPDATE featured_events SET view_count = view_count + 1 WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to record featured views: %w", err)
	}
	return nil
}

func (r *repository) RecordFeaturedClick(ctx context.Context, id int64) (*model.FeaturedEvent, error) {
	f, err := scanFeatured(r.db.Master.QueryRowContext(ctx, `
		UPDATE featured_events
		SET click_count = click_count + 1
		WHERE id = $1
		RETURNING `+featuredColumns, id))
	if err != nil {
		return nil, classify(err, ErrFeaturedNotFound)
	}
	return f, nil
}
