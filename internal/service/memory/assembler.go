package memory

import (
	"context"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/pkg/log"
	"github.com/carelog/carebot/pkg/tokens"
)

type AssemblerConfig struct {
	MinPinImportance float64
	RecentLimit      int
	PinLimit         int
	SummaryLimit     int
}

// Assembler builds the model context for a turn. It must run before
// the turn's user message is appended: it reads only state committed
// strictly earlier, which is what keeps concurrent summarization and
// the "exclude the current message" hazard out of the picture.
type Assembler struct {
	store   *Store
	counter tokens.Counter
	cfg     AssemblerConfig
}

func NewAssembler(store *Store, counter tokens.Counter, cfg AssemblerConfig) *Assembler {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 50
	}
	if cfg.PinLimit <= 0 {
		cfg.PinLimit = 20
	}
	if cfg.SummaryLimit <= 0 {
		cfg.SummaryLimit = 10
	}
	return &Assembler{store: store, counter: counter, cfg: cfg}
}

// Context is an ordered, budgeted message list ready for a model
// call.
type Context struct {
	Messages   []core.Message
	TokenCount int
}

// Build assembles pins, then summaries, then raw history, each stage
// consuming from the remaining budget. The result never exceeds
// budget; it is empty only when the session has no usable history.
// Identical store state and budget produce identical output.
func (a *Assembler) Build(ctx context.Context, sessionID string, budget int) Context {
	out := Context{}
	if budget <= 0 {
		return out
	}
	remaining := budget

	// Stage 1: pins, importance descending. The repository ordering
	// means running out of budget drops the least important first.
	for _, pin := range a.store.Pins(ctx, sessionID, a.cfg.PinLimit) {
		if pin.Importance < a.cfg.MinPinImportance {
			continue
		}
		content := "Pinned note: " + pin.Content
		cost := a.counter.Count(content)
		if cost > remaining {
			continue
		}
		out.Messages = append(out.Messages, core.Message{Role: core.RoleSystem, Content: content})
		out.TokenCount += cost
		remaining -= cost
	}

	// Stage 2: summaries, importance then recency descending.
	for _, sum := range a.store.Summaries(ctx, sessionID, a.cfg.SummaryLimit) {
		content := "Earlier in this conversation: " + sum.SummaryText
		cost := a.counter.Count(content)
		if cost > remaining {
			continue
		}
		out.Messages = append(out.Messages, core.Message{Role: core.RoleSystem, Content: content})
		out.TokenCount += cost
		remaining -= cost
	}

	// Stage 3: raw messages fill what is left, chronological, dropping
	// from the oldest end.
	recent := a.store.Recent(ctx, sessionID, a.cfg.RecentLimit)
	kept := make([]core.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		cost := a.counter.Count(msg.Content)
		if cost > remaining {
			break
		}
		kept = append(kept, core.Message{Role: msg.Role, Content: msg.Content})
		out.TokenCount += cost
		remaining -= cost
	}
	for i := len(kept) - 1; i >= 0; i-- {
		out.Messages = append(out.Messages, kept[i])
	}

	log.FromCtx(ctx).Debug().
		Str("session", sessionID).
		Int("messages", len(out.Messages)).
		Int("tokens", out.TokenCount).
		Int("budget", budget).
		Msg("context assembled")

	return out
}
