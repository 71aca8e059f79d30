package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

// OutboxFunc builds the async message recorded alongside a new row.
// It receives the id the row was given and may return nil to record nothing.
type OutboxFunc func(id int64) (*model.AsyncMessage, error)

type OutboxRepository interface {
	EnqueueAsyncMessage(ctx context.Context, m *model.AsyncMessage) (int64, error)
	// DeliverAsyncMessages claims up to limit available, undelivered messages of a queue,
	// passes each to deliver and marks the ones it accepted as delivered.
	DeliverAsyncMessages(ctx context.Context, queue string, limit int, deliver func(model.AsyncMessage) error) (int, error)
}

func insertAsyncMessage(ctx context.Context, q querier, m *model.AsyncMessage) (int64, error) {
	query := `
		INSERT INTO async_messages (body, headers, queue_name, available_at)
		VALUES ($1, COALESCE($2::jsonb, '{}'::jsonb), $3, COALESCE($4::timestamptz, NOW()))
		RETURNING id, created_at, available_at
	`
	var availableAt any
	if !m.AvailableAt.IsZero() {
		availableAt = m.AvailableAt
	}
	err := q.QueryRowContext(ctx, query, m.Body, m.Headers, m.QueueName, availableAt).
		Scan(&m.ID, &m.CreatedAt, &m.AvailableAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert async message: %w", err)
	}
	return m.ID, nil
}

func enqueueWithin(ctx context.Context, tx *sql.Tx, notify OutboxFunc, id int64) error {
	if notify == nil {
		return nil
	}
	m, err := notify(id)
	if err != nil {
		return fmt.Errorf("failed to build async message: %w", err)
	}
	if m == nil {
		return nil
	}
	_, err = insertAsyncMessage(ctx, tx, m)
	return err
}

func (r *repository) EnqueueAsyncMessage(ctx context.Context, m *model.AsyncMessage) (int64, error) {
	return insertAsyncMessage(ctx, r.db.Master, m)
}

func (r *repository) DeliverAsyncMessages(ctx context.Context, queue string, limit int, deliver func(model.AsyncMessage) error) (int, error) {
	delivered := 0
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, body, headers, queue_name, created_at, available_at, delivered_at
			FROM async_messages
			WHERE queue_name = $1 AND delivered_at IS NULL AND available_at <= NOW()
			ORDER BY available_at ASC, id ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, queue, limit)
		if err != nil {
			return fmt.Errorf("failed to claim async messages: %w", err)
		}

		var batch []model.AsyncMessage
		for rows.Next() {
			var m model.AsyncMessage
			if err := rows.Scan(&m.ID, &m.Body, &m.Headers, &m.QueueName, &m.CreatedAt, &m.AvailableAt, &m.DeliveredAt); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan async message: %w", err)
			}
			batch = append(batch, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate async messages: %w", err)
		}

		for _, m := range batch {
			if err := deliver(m); err != nil {
				r.log.Warn().Err(err).Int64("async_message_id", m.ID).Msg("async message not delivered, will retry")
				continue
			}
			if _, err := tx.ExecContext(ctx, `UPDATE async_messages SET delivered_at = NOW() WHERE id = $1`, m.ID); err != nil {
				return fmt.Errorf("failed to mark async message %d delivered: %w", m.ID, err)
			}
			delivered++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}
