package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/internal/service/memory"
)

type PinCmd struct {
	store *memory.Store
}

func NewPinCmd(store *memory.Store) *PinCmd {
	return &PinCmd{store: store}
}

func (c *PinCmd) Name() string        { return "pin" }
func (c *PinCmd) Description() string { return "Pin a note so it survives in every future context" }

func (c *PinCmd) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	content := strings.TrimSpace(strings.Join(args, " "))
	if content == "" {
		return "Usage: /pin <note>", nil
	}

	if err := c.store.AddPin(ctx, sessionID, content, core.PinManual, ""); err != nil {
		return "", fmt.Errorf("save pin: %w", err)
	}
	return "Pinned.", nil
}

type PinsCmd struct {
	store *memory.Store
	limit int
}

func NewPinsCmd(store *memory.Store, limit int) *PinsCmd {
	if limit <= 0 {
		limit = 20
	}
	return &PinsCmd{store: store, limit: limit}
}

func (c *PinsCmd) Name() string        { return "pins" }
func (c *PinsCmd) Description() string { return "List the pinned notes for this session" }

func (c *PinsCmd) Execute(ctx context.Context, sessionID string, _ []string) (string, error) {
	pins := c.store.Pins(ctx, sessionID, c.limit)
	if len(pins) == 0 {
		return "Nothing pinned yet. Use /pin <note> to keep something around.", nil
	}

	var b strings.Builder
	b.WriteString("Pinned notes:\n")
	for _, p := range pins {
		fmt.Fprintf(&b, "- %s\n", p.Content)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
