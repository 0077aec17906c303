package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/carelog/carebot/internal/core"
)

// SubjectCmd shows who the session is currently about. It is
// read-only on purpose: the subject changes only when a question names
// someone explicitly.
type SubjectCmd struct {
	sessions core.SessionRepository
	records  core.RecordSource
}

func NewSubjectCmd(sessions core.SessionRepository, records core.RecordSource) *SubjectCmd {
	return &SubjectCmd{sessions: sessions, records: records}
}

func (c *SubjectCmd) Name() string        { return "subject" }
func (c *SubjectCmd) Description() string { return "Show who this conversation is currently about" }

func (c *SubjectCmd) Execute(ctx context.Context, sessionID string, _ []string) (string, error) {
	session, err := c.sessions.Get(ctx, sessionID)
	if errors.Is(err, core.ErrNotFound) || (err == nil && session.SubjectID == "") {
		return "No one yet. Ask about someone by name and I'll remember them.", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	patient, err := c.records.PatientByID(ctx, session.SubjectID)
	if errors.Is(err, core.ErrNotFound) {
		return "The person this session was about is no longer in the records.", nil
	}
	if err != nil {
		return "", fmt.Errorf("load subject: %w", err)
	}

	return fmt.Sprintf("This conversation is currently about %s.", patient.FullName()), nil
}
