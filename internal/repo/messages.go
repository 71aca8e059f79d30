package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

type MessageRepository interface {
	CreateMessage(ctx context.Context, m *model.Message, notify OutboxFunc) (int64, error)
	GetMessageByID(ctx context.Context, id int64) (*model.Message, error)
	ListMessagesBySender(ctx context.Context, attendeeID int64) ([]model.Message, error)
	ListMessagesByRecipient(ctx context.Context, administratorID int64, unreadOnly bool) ([]model.Message, error)
	MarkMessageRead(ctx context.Context, id, recipientID int64) (*model.Message, error)
}

const messageColumns = `id, sender_id, recipient_id, event_id, reply_to_id, subject, content,
	is_read, read_at, status, priority, created_at, updated_at`

func scanMessage(row rowScanner) (*model.Message, error) {
	var m model.Message
	if err := row.Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.EventID, &m.ReplyToID, &m.Subject, &m.Content,
		&m.IsRead, &m.ReadAt, &m.Status, &m.Priority, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) CreateMessage(ctx context.Context, m *model.Message, notify OutboxFunc) (int64, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO messages (sender_id, recipient_id, event_id, reply_to_id, subject, content, status, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query,
			m.SenderID, m.RecipientID, m.EventID, m.ReplyToID, m.Subject, m.Content, m.Status, m.Priority,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", classify(err, nil))
		}

		return enqueueWithin(ctx, tx, notify, m.ID)
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *repository) GetMessageByID(ctx context.Context, id int64) (*model.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err, ErrMessageNotFound)
	}
	return m, nil
}

func (r *repository) ListMessagesBySender(ctx context.Context, attendeeID int64) ([]model.Message, error) {
	return r.queryMessages(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE sender_id = $1 ORDER BY created_at DESC`,
		attendeeID,
	)
}

func (r *repository) ListMessagesByRecipient(ctx context.Context, administratorID int64, unreadOnly bool) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY
		CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END,
		created_at DESC`
	return r.queryMessages(ctx, query, administratorID)
}

func (r *repository) queryMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (r *repository) MarkMessageRead(ctx context.Context, id, recipientID int64) (*model.Message, error) {
	row := r.db.Master.QueryRowContext(ctx, `
		UPDATE messages
		SET is_read = TRUE,
			read_at = COALESCE(read_at, NOW()),
			status = CASE WHEN status = 'sent' THEN 'read' ELSE status END,
			updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2
		RETURNING `+messageColumns, id, recipientID)
	m, err := scanMessage(row)
	if err != nil {
		return nil, classify(err, ErrMessageNotFound)
	}
	return m, nil
}
