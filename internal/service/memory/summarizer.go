package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/pkg/log"
)

const (
	defaultSummaryThreshold = 20
	defaultSweepInterval    = 5 * time.Minute
	notifyBuffer            = 64
)

// Summarizer compresses the uncompressed message tail of a session
// once it grows past Threshold. It runs in the background and never
// blocks a turn: the orchestrator only drops a session id into the
// notify channel. A summary references a fixed, already-committed id
// range, so it is safe to create while later turns keep appending.
type Summarizer struct {
	store     *Store
	ai        core.AIProvider
	Threshold int
	Interval  time.Duration

	notify chan string
	// pending holds only sessions whose last check failed; the sweep
	// retries and prunes them, so the set stays small.
	pending map[string]struct{}
}

func NewSummarizer(store *Store, ai core.AIProvider, threshold int) *Summarizer {
	if threshold <= 0 {
		threshold = defaultSummaryThreshold
	}
	return &Summarizer{
		store:     store,
		ai:        ai,
		Threshold: threshold,
		Interval:  defaultSweepInterval,
		notify:    make(chan string, notifyBuffer),
		pending:   make(map[string]struct{}),
	}
}

// Notify schedules a session for a threshold check. Non-blocking: a
// full queue drops the hint, the periodic sweep catches up later.
func (s *Summarizer) Notify(sessionID string) {
	select {
	case s.notify <- sessionID:
	default:
	}
}

func (s *Summarizer) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Int("threshold", s.Threshold).Msg("starting conversation summarizer")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case sessionID := <-s.notify:
			s.handleNotify(ctx, sessionID)
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Summarizer) handleNotify(ctx context.Context, sessionID string) {
	if err := s.process(ctx, sessionID); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("session", sessionID).Msg("summarization failed")
		s.pending[sessionID] = struct{}{}
	}
}

// sweep retries sessions whose last check failed and forgets every
// one that succeeds. A healthy process leaves the set empty.
func (s *Summarizer) sweep(ctx context.Context) {
	for sessionID := range s.pending {
		if err := s.process(ctx, sessionID); err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("session", sessionID).Msg("summarization sweep failed")
			continue
		}
		delete(s.pending, sessionID)
	}
}

func (s *Summarizer) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Summarizer) process(ctx context.Context, sessionID string) error {
	tail, err := s.store.UncompressedTail(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("fetch tail: %w", err)
	}
	if len(tail) < s.Threshold {
		return nil
	}

	conversation := formatConversation(tail)

	reply, err := s.ai.Generate(ctx, []core.Message{
		{Role: core.RoleSystem, Content: "You compress conversation history. Reply with a short factual summary only."},
		{Role: core.RoleUser, Content: buildSummaryPrompt(conversation)},
	})
	if err != nil {
		// Recoverable: the tail stays uncompressed and the next
		// notify retries.
		return fmt.Errorf("summary generation: %w", err)
	}

	text := strings.TrimSpace(reply.Message.Content)
	if text == "" {
		return fmt.Errorf("summary generation: empty response")
	}

	summary := core.Summary{
		SessionID:      sessionID,
		SummaryText:    text,
		MessageCount:   len(tail),
		StartMessageID: tail[0].ID,
		EndMessageID:   tail[len(tail)-1].ID,
		Importance:     DefaultSummaryImportance,
	}
	if err := s.store.AddSummary(ctx, summary); err != nil {
		return err
	}

	log.FromCtx(ctx).Info().
		Str("session", sessionID).
		Int("messages", len(tail)).
		Msg("conversation tail summarized")
	return nil
}

func formatConversation(msgs []core.StoredMessage) string {
	var b strings.Builder
	for _, m := range msgs {
		if m.Role == core.RoleSystem {
			continue
		}
		b.WriteString(strings.ToUpper(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

func buildSummaryPrompt(conversation string) string {
	return fmt.Sprintf(
		`Summarize the conversation below in at most five sentences. Keep names, decisions and stated facts; drop greetings and filler. Do not add information that is not present. Conversation: %s`,
		conversation,
	)
}
