package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carelog/carebot/internal/core"
)

type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Get(ctx context.Context, id string) (*core.Session, error) {
	query := `SELECT id, subject_id, persona_id, model_id, created_at, updated_at
	          FROM sessions WHERE id = ?`

	var (
		s         core.Session
		subjectID sql.NullString
		personaID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &subjectID, &personaID, &s.ModelID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	s.SubjectID = subjectID.String
	s.PersonaID = personaID.String
	return &s, nil
}

func (r *SessionsRepo) GetOrCreate(ctx context.Context, id, modelID string) (*core.Session, error) {
	s, err := r.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	query := `INSERT INTO sessions (id, model_id, created_at, updated_at) VALUES (?, ?, ?, ?)
	          ON CONFLICT(id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, id, modelID, now, now); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SessionsRepo) SetSubject(ctx context.Context, id, subjectID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET subject_id = ?, updated_at = ? WHERE id = ?`,
		subjectID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set session subject: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
