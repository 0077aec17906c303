package core

import "time"

// StoredMessage is one persisted conversational turn. Immutable once
// written except for Importance.
type StoredMessage struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ModelID    string    `json:"model_id,omitempty"`
	TokenUsage int       `json:"token_usage"`
	Importance float64   `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary compresses a fixed, already-committed range of messages.
// Append-only.
type Summary struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	SummaryText    string    `json:"summary_text"`
	MessageCount   int       `json:"message_count"`
	StartMessageID string    `json:"start_message_id"`
	EndMessageID   string    `json:"end_message_id"`
	Importance     float64   `json:"importance"`
	CreatedAt      time.Time `json:"created_at"`
}

type PinType string

const (
	PinManual  PinType = "manual"
	PinAuto    PinType = "auto"
	PinCode    PinType = "code"
	PinConcept PinType = "concept"
	PinSystem  PinType = "system"
)

// Pin is a durable high-value snippet. Pins survive budget churn
// indefinitely; they are only ever trimmed out of a single assembled
// context, never deleted.
type Pin struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Content         string    `json:"content"`
	SourceMessageID string    `json:"source_message_id,omitempty"`
	Importance      float64   `json:"importance"`
	Type            PinType   `json:"pin_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// Session is the aggregation root for messages, summaries and pins.
// SubjectID records the last explicitly named subject and is mutated
// only by confident explicit-name resolution.
type Session struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id,omitempty"`
	PersonaID string    `json:"persona_id,omitempty"`
	ModelID   string    `json:"model_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
