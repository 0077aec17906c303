package llm

import (
	"context"
	"fmt"

	"github.com/carelog/carebot/internal/core"
)

// Mock echoes the last user message. Useful for wiring checks and
// offline demos where no backend is reachable.
type Mock struct {
	model string
}

func NewMock(model string) *Mock {
	return &Mock{model: model}
}

func (m *Mock) Generate(_ context.Context, messages []core.Message) (core.Reply, error) {
	var last string
	for _, msg := range messages {
		if msg.Role == core.RoleUser {
			last = msg.Content
		}
	}

	return core.Reply{
		Message: core.Message{
			Role:    core.RoleAssistant,
			Content: fmt.Sprintf("(mock) you said: %s", last),
		},
		ModelID: m.model,
	}, nil
}
