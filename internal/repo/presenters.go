package repo

import (
	"context"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type PresenterRepository interface {
	CreatePresenter(ctx context.Context, p *model.Presenter) (int64, error)
	GetPresenterByID(ctx context.Context, id int64) (*model.Presenter, error)
	ListPresenters(ctx context.Context) ([]model.Presenter, error)
	AttachPresenter(ctx context.Context, ep *model.EventPresenter) (int64, error)
	ListEventPresenters(ctx context.Context, eventID int64, visibleOnly bool) ([]model.EventPresenter, error)
}

const presenterColumns = `id, name, email, title, company, bio, website, linkedin, twitter,
	photo_filename, is_active, created_at, updated_at`

func presenterDest(p *model.Presenter) []any {
	return []any{
		&p.ID, &p.Name, &p.Email, &p.Title, &p.Company, &p.Bio, &p.Website, &p.LinkedIn, &p.Twitter,
		&p.PhotoFilename, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *repository) CreatePresenter(ctx context.Context, p *model.Presenter) (int64, error) {
	query := `
		INSERT INTO presenters (name, email, title, company, bio, website, linkedin, twitter, photo_filename, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		p.Name, p.Email, p.Title, p.Company, p.Bio, p.Website, p.LinkedIn, p.Twitter, p.PhotoFilename, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert presenter: %w", classify(err, nil))
	}
	return p.ID, nil
}

func (r *repository) GetPresenterByID(ctx context.Context, id int64) (*model.Presenter, error) {
	var p model.Presenter
	err := r.db.QueryRowContext(ctx, `SELECT `+presenterColumns+` FROM presenters WHERE id = $1`, id).Scan(presenterDest(&p)...)
	if err != nil {
		return nil, classify(err, ErrPresenterNotFound)
	}
	return &p, nil
}

func (r *repository) ListPresenters(ctx context.Context) ([]model.Presenter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+presenterColumns+` FROM presenters ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get presenters: %w", err)
	}
	defer rows.Close()

	var presenters []model.Presenter
	for rows.Next() {
		var p model.Presenter
		if err := rows.Scan(presenterDest(&p)...); err != nil {
			return nil, fmt.Errorf("failed to scan presenter: %w", err)
		}
		presenters = append(presenters, p)
	}
	return presenters, rows.Err()
}

func (r *repository) AttachPresenter(ctx context.Context, ep *model.EventPresenter) (int64, error) {
	query := `
		INSERT INTO event_presenters (event_id, presenter_id, presentation_title, presentation_description,
			start_time, end_time, is_visible, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		ep.EventID, ep.PresenterID, ep.PresentationTitle, ep.PresentationDescription,
		ep.StartTime, ep.EndTime, ep.IsVisible, ep.SortOrder,
	).Scan(&ep.ID, &ep.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to attach presenter: %w", classify(err, nil))
	}
	return ep.ID, nil
}

func (r *repository) ListEventPresenters(ctx context.Context, eventID int64, visibleOnly bool) ([]model.EventPresenter, error) {
	query := `
		SELECT ep.id, ep.event_id, ep.presenter_id, ep.presentation_title, ep.presentation_description,
			ep.start_time, ep.end_time, ep.is_visible, ep.sort_order, ep.created_at,
			` + prefixed("p", presenterColumns) + `
		FROM event_presenters ep
		JOIN presenters p ON p.id = ep.presenter_id
		WHERE ep.event_id = $1`
	if visibleOnly {
		query += ` AND ep.is_visible = TRUE AND p.is_active = TRUE`
	}
	query += ` ORDER BY ep.sort_order ASC, ep.start_time ASC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event presenters: %w", err)
	}
	defer rows.Close()

	var out []model.EventPresenter
	for rows.Next() {
		var (
			ep model.EventPresenter
			p  model.Presenter
		)
		dest := append([]any{
			&ep.ID, &ep.EventID, &ep.PresenterID, &ep.PresentationTitle, &ep.PresentationDescription,
			&ep.StartTime, &ep.EndTime, &ep.IsVisible, &ep.SortOrder, &ep.CreatedAt,
		}, presenterDest(&p)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan event presenter: %w", err)
		}
		ep.Presenter = &p
		out = append(out, ep)
	}
	return out, rows.Err()
}
