package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carebot/internal/core"
)

type SummariesRepo struct {
	db *sql.DB
}

func NewSummariesRepo(db *sql.DB) *SummariesRepo {
	return &SummariesRepo{db: db}
}

func (r *SummariesRepo) Add(ctx context.Context, s core.Summary) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO summaries (id, session_id, summary_text, message_count, start_message_id, end_message_id, importance, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.SessionID, s.SummaryText, s.MessageCount, s.StartMessageID, s.EndMessageID, s.Importance, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

func (r *SummariesRepo) BySession(ctx context.Context, sessionID string, limit int) ([]core.Summary, error) {
	query := `SELECT id, session_id, summary_text, message_count, start_message_id, end_message_id, importance, created_at
	          FROM summaries WHERE session_id = ?
	          ORDER BY importance DESC, created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []core.Summary
	for rows.Next() {
		var s core.Summary
		if err := rows.Scan(&s.ID, &s.SessionID, &s.SummaryText, &s.MessageCount,
			&s.StartMessageID, &s.EndMessageID, &s.Importance, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SummariesRepo) Latest(ctx context.Context, sessionID string) (*core.Summary, error) {
	query := `SELECT id, session_id, summary_text, message_count, start_message_id, end_message_id, importance, created_at
	          FROM summaries WHERE session_id = ? ORDER BY rowid DESC LIMIT 1`

	var s core.Summary
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.ID, &s.SessionID, &s.SummaryText, &s.MessageCount,
		&s.StartMessageID, &s.EndMessageID, &s.Importance, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest summary: %w", err)
	}
	return &s, nil
}
