package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carebot/internal/core"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) Add(ctx context.Context, msg core.StoredMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO messages (id, session_id, role, content, model_id, token_usage, importance, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, msg.Role, msg.Content, msg.ModelID, msg.TokenUsage, msg.Importance, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MessagesRepo) Recent(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error) {
	// Newest first in SQL, reversed below so callers read oldest first.
	query := `SELECT id, session_id, role, content, model_id, token_usage, importance, created_at
	          FROM messages WHERE session_id = ? ORDER BY rowid DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessagesRepo) After(ctx context.Context, sessionID, afterID string) ([]core.StoredMessage, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if afterID == "" {
		query := `SELECT id, session_id, role, content, model_id, token_usage, importance, created_at
		          FROM messages WHERE session_id = ? ORDER BY rowid ASC`
		rows, err = r.db.QueryContext(ctx, query, sessionID)
	} else {
		query := `SELECT id, session_id, role, content, model_id, token_usage, importance, created_at
		          FROM messages
		          WHERE session_id = ? AND rowid > (SELECT rowid FROM messages WHERE id = ?)
		          ORDER BY rowid ASC`
		rows, err = r.db.QueryContext(ctx, query, sessionID, afterID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query message tail: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessagesRepo) SetImportance(ctx context.Context, id string, importance float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET importance = ? WHERE id = ?`, importance, id)
	if err != nil {
		return fmt.Errorf("failed to update importance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func scanMessages(rows *sql.Rows) ([]core.StoredMessage, error) {
	var messages []core.StoredMessage
	for rows.Next() {
		var msg core.StoredMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content,
			&msg.ModelID, &msg.TokenUsage, &msg.Importance, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
