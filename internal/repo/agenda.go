package repo

import (
	"context"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type AgendaRepository interface {
	CreateAgendaItem(ctx context.Context, item *model.AgendaItem) (int64, error)
	ListAgendaItems(ctx context.Context, eventID int64, visibleOnly bool) ([]model.AgendaItem, error)
	DeleteAgendaItem(ctx context.Context, id int64) error
}

func (r *repository) CreateAgendaItem(ctx context.Context, item *model.AgendaItem) (int64, error) {
	query := `
		INSERT INTO agenda_items (event_id, presenter_id, title, description, start_time, end_time,
			item_type, speaker, location, sort_order, is_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Master.QueryRowContext(ctx, query,
		item.EventID, item.PresenterID, item.Title, item.Description, item.StartTime, item.EndTime,
		item.ItemType, item.Speaker, item.Location, item.SortOrder, item.IsVisible,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert agenda item: %w", classify(err, nil))
	}
	return item.ID, nil
}

func (r *repository) ListAgendaItems(ctx context.Context, eventID int64, visibleOnly bool) ([]model.AgendaItem, error) {
	query := `
		SELECT id, event_id, presenter_id, title, description, start_time, end_time, item_type,
			speaker, location, sort_order, is_visible, created_at, updated_at
		FROM agenda_items
		WHERE event_id = $1`
	if visibleOnly {
		query += ` AND is_visible = TRUE`
	}
	query += ` ORDER BY start_time ASC, sort_order ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agenda items: %w", err)
	}
	defer rows.Close()

	var items []model.AgendaItem
	for rows.Next() {
		var it model.AgendaItem
		if err := rows.Scan(
			&it.ID, &it.EventID, &it.PresenterID, &it.Title, &it.Description, &it.StartTime, &it.EndTime, &it.ItemType,
			&it.Speaker, &it.Location, &it.SortOrder, &it.IsVisible, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan agenda item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) DeleteAgendaItem(ctx context.Context, id int64) error {
	res, err := r.db.Master.ExecContext(ctx, `DELETE FROM agenda_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete agenda item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAgendaItemNotFound
	}
	return nil
}
