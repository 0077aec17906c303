package core

import "context"

type MessageRepository interface {
	Add(ctx context.Context, msg StoredMessage) error
	// Recent returns the newest limit messages, oldest first.
	Recent(ctx context.Context, sessionID string, limit int) ([]StoredMessage, error)
	// After returns all messages created after the given message id,
	// oldest first. An empty afterID means the whole session.
	After(ctx context.Context, sessionID, afterID string) ([]StoredMessage, error)
	SetImportance(ctx context.Context, id string, importance float64) error
}

type SummaryRepository interface {
	Add(ctx context.Context, s Summary) error
	// BySession returns summaries sorted by importance desc, then
	// recency desc.
	BySession(ctx context.Context, sessionID string, limit int) ([]Summary, error)
	// Latest returns the most recently created summary, or nil.
	Latest(ctx context.Context, sessionID string) (*Summary, error)
}

type PinRepository interface {
	Add(ctx context.Context, p Pin) error
	// BySession returns pins sorted by importance desc, then recency
	// desc.
	BySession(ctx context.Context, sessionID string, limit int) ([]Pin, error)
}

type SessionRepository interface {
	Get(ctx context.Context, id string) (*Session, error)
	GetOrCreate(ctx context.Context, id, modelID string) (*Session, error)
	// SetSubject is the only mutation path for Session.SubjectID.
	SetSubject(ctx context.Context, id, subjectID string) error
}
