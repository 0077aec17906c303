// Package subject resolves subject references against the record
// store and the per-session "last discussed subject" state.
package subject

import (
	"context"
	"fmt"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/internal/service/classify"
	"github.com/carelog/carebot/pkg/log"
)

type Tracker struct {
	records  core.RecordSource
	sessions core.SessionRepository
}

func NewTracker(records core.RecordSource, sessions core.SessionRepository) *Tracker {
	return &Tracker{records: records, sessions: sessions}
}

// Resolve maps a subject reference to a patient id.
//
// An explicit name that matches exactly one patient is the only path
// that mutates session.SubjectID. Pronouns and bare references read
// the session state and never write; when nothing is remembered the
// caller gets ErrSubjectUnresolved and must fall back to general
// handling rather than guess.
func (t *Tracker) Resolve(ctx context.Context, ref classify.SubjectRef, session *core.Session) (string, error) {
	if ref.Kind != classify.RefExplicitName {
		if session.SubjectID != "" {
			return session.SubjectID, nil
		}
		return "", core.ErrSubjectUnresolved
	}

	patients, err := t.records.PatientsByName(ctx, ref.Name)
	if err != nil {
		return "", fmt.Errorf("subject lookup: %w", err)
	}

	switch len(patients) {
	case 0:
		return "", core.ErrSubjectNotFound
	case 1:
		id := patients[0].ID
		if err := t.sessions.SetSubject(ctx, session.ID, id); err != nil {
			return "", fmt.Errorf("persist session subject: %w", err)
		}
		session.SubjectID = id
		log.FromCtx(ctx).Debug().
			Str("session", session.ID).
			Str("subject", id).
			Msg("session subject updated")
		return id, nil
	default:
		return "", core.ErrAmbiguousSubject
	}
}
