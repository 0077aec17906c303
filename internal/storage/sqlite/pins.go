package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carebot/internal/core"
)

type PinsRepo struct {
	db *sql.DB
}

func NewPinsRepo(db *sql.DB) *PinsRepo {
	return &PinsRepo{db: db}
}

func (r *PinsRepo) Add(ctx context.Context, p core.Pin) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Type == "" {
		p.Type = core.PinManual
	}

	var sourceID any
	if p.SourceMessageID != "" {
		sourceID = p.SourceMessageID
	}

	query := `INSERT INTO pins (id, session_id, content, source_message_id, importance, pin_type, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SessionID, p.Content, sourceID, p.Importance, string(p.Type), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pin: %w", err)
	}
	return nil
}

func (r *PinsRepo) BySession(ctx context.Context, sessionID string, limit int) ([]core.Pin, error) {
	query := `SELECT id, session_id, content, source_message_id, importance, pin_type, created_at
	          FROM pins WHERE session_id = ?
	          ORDER BY importance DESC, created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pins: %w", err)
	}
	defer rows.Close()

	var pins []core.Pin
	for rows.Next() {
		var (
			p        core.Pin
			pinType  string
			sourceID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Content, &sourceID, &p.Importance, &pinType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		p.SourceMessageID = sourceID.String
		p.Type = core.PinType(pinType)
		pins = append(pins, p)
	}
	return pins, rows.Err()
}
