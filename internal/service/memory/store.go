// Package memory is the durable conversation memory: the per-session
// message log, rolling summaries and pinned snippets, plus the
// token-budgeted context assembler over them.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/pkg/log"
)

// Default importance scores. Summaries rank above raw messages so
// compressed history survives budget pressure longer; pins rank above
// both.
const (
	DefaultMessageImportance = 0.3
	DefaultSummaryImportance = 0.6
	DefaultPinImportance     = 0.8
)

// Store wraps the repositories with the turn path's failure
// semantics: reads degrade to empty results with a logged warning, so
// a storage outage costs context, never a user-facing error.
type Store struct {
	messages  core.MessageRepository
	summaries core.SummaryRepository
	pins      core.PinRepository
}

func NewStore(messages core.MessageRepository, summaries core.SummaryRepository, pins core.PinRepository) *Store {
	return &Store{messages: messages, summaries: summaries, pins: pins}
}

// Append persists one turn message. It never rebuilds context; the
// assembler reads committed state only.
func (s *Store) Append(ctx context.Context, sessionID string, msg core.StoredMessage) error {
	msg.SessionID = sessionID
	if msg.Importance == 0 {
		msg.Importance = DefaultMessageImportance
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if err := s.messages.Add(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Recent returns the newest limit messages oldest-first, or nothing
// when the store is unavailable.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) []core.StoredMessage {
	msgs, err := s.messages.Recent(ctx, sessionID, limit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("message store degraded to empty")
		return nil
	}
	return msgs
}

func (s *Store) Pins(ctx context.Context, sessionID string, limit int) []core.Pin {
	pins, err := s.pins.BySession(ctx, sessionID, limit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("pin store degraded to empty")
		return nil
	}
	return pins
}

func (s *Store) Summaries(ctx context.Context, sessionID string, limit int) []core.Summary {
	summaries, err := s.summaries.BySession(ctx, sessionID, limit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("summary store degraded to empty")
		return nil
	}
	return summaries
}

// AddPin records a durable snippet. Pins are append-only and exempt
// from any eviction.
func (s *Store) AddPin(ctx context.Context, sessionID, content string, pinType core.PinType, sourceMessageID string) error {
	p := core.Pin{
		SessionID:       sessionID,
		Content:         content,
		Type:            pinType,
		SourceMessageID: sourceMessageID,
		Importance:      DefaultPinImportance,
	}
	if err := s.pins.Add(ctx, p); err != nil {
		return fmt.Errorf("add pin: %w", err)
	}
	return nil
}

func (s *Store) AddSummary(ctx context.Context, summary core.Summary) error {
	if summary.Importance == 0 {
		summary.Importance = DefaultSummaryImportance
	}
	if err := s.summaries.Add(ctx, summary); err != nil {
		return fmt.Errorf("add summary: %w", err)
	}
	return nil
}

// UncompressedTail returns the messages not yet covered by any
// summary, oldest first.
func (s *Store) UncompressedTail(ctx context.Context, sessionID string) ([]core.StoredMessage, error) {
	latest, err := s.summaries.Latest(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("latest summary: %w", err)
	}

	afterID := ""
	if latest != nil {
		afterID = latest.EndMessageID
	}

	tail, err := s.messages.After(ctx, sessionID, afterID)
	if err != nil {
		return nil, fmt.Errorf("message tail: %w", err)
	}
	return tail, nil
}
