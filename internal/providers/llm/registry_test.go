package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/carelog/carebot/internal/core"
)

func TestRegistryFallsBack(t *testing.T) {
	fallback := NewMock("fallback-model")
	registry := NewRegistry(fallback)

	if got := registry.For("never-registered"); got != core.AIProvider(fallback) {
		t.Fatal("unregistered id must return the fallback provider")
	}

	special := NewMock("special-model")
	registry.Register("special-model", special)

	if got := registry.For("special-model"); got != core.AIProvider(special) {
		t.Fatal("registered id must return its own provider")
	}
	if got := registry.For("other"); got != core.AIProvider(fallback) {
		t.Fatal("other ids still fall back")
	}
}

func TestMockEchoesLastUserMessage(t *testing.T) {
	m := NewMock("test-model")

	reply, err := m.Generate(context.Background(), []core.Message{
		{Role: core.RoleSystem, Content: "system prompt"},
		{Role: core.RoleUser, Content: "first"},
		{Role: core.RoleAssistant, Content: "reply"},
		{Role: core.RoleUser, Content: "second"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(reply.Message.Content, "second") {
		t.Fatalf("reply = %q, want echo of the last user message", reply.Message.Content)
	}
	if reply.ModelID != "test-model" {
		t.Fatalf("model id = %q", reply.ModelID)
	}
}
