package command

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/carelog/carebot/internal/core"
	"github.com/carelog/carebot/internal/service/memory"
)

type fakePins struct {
	mu   sync.Mutex
	pins []core.Pin
}

func (f *fakePins) Add(_ context.Context, p core.Pin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins = append(f.pins, p)
	return nil
}

func (f *fakePins) BySession(_ context.Context, sessionID string, _ int) ([]core.Pin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Pin
	for _, p := range f.pins {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

type noopMessages struct{}

func (noopMessages) Add(_ context.Context, _ core.StoredMessage) error { return nil }
func (noopMessages) Recent(_ context.Context, _ string, _ int) ([]core.StoredMessage, error) {
	return nil, nil
}
func (noopMessages) After(_ context.Context, _, _ string) ([]core.StoredMessage, error) {
	return nil, nil
}
func (noopMessages) SetImportance(_ context.Context, _ string, _ float64) error { return nil }

type noopSummaries struct{}

func (noopSummaries) Add(_ context.Context, _ core.Summary) error { return nil }
func (noopSummaries) BySession(_ context.Context, _ string, _ int) ([]core.Summary, error) {
	return nil, nil
}
func (noopSummaries) Latest(_ context.Context, _ string) (*core.Summary, error) { return nil, nil }

func testRouter() (*Router, *fakePins) {
	pins := &fakePins{}
	store := memory.NewStore(noopMessages{}, noopSummaries{}, pins)

	router := New([]Command{
		NewPinCmd(store),
		NewPinsCmd(store, 20),
	})
	return router, pins
}

func TestNonCommandInputIsNotConsumed(t *testing.T) {
	router, _ := testRouter()

	if _, handled := router.Execute(context.Background(), "s-1", "hello there"); handled {
		t.Fatal("plain text must pass through to the turn path")
	}
}

func TestUnknownCommand(t *testing.T) {
	router, _ := testRouter()

	reply, handled := router.Execute(context.Background(), "s-1", "/bogus")
	if !handled {
		t.Fatal("slash input must be consumed even when unknown")
	}
	if !strings.Contains(reply, "/bogus") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestPinRoundTrip(t *testing.T) {
	router, pins := testRouter()
	ctx := context.Background()

	reply, handled := router.Execute(ctx, "s-1", "/pin Alice is allergic to penicillin")
	if !handled || reply != "Pinned." {
		t.Fatalf("pin reply = %q handled=%v", reply, handled)
	}

	if len(pins.pins) != 1 {
		t.Fatalf("stored %d pins, want 1", len(pins.pins))
	}
	p := pins.pins[0]
	if p.Content != "Alice is allergic to penicillin" {
		t.Fatalf("pin content = %q", p.Content)
	}
	if p.Type != core.PinManual {
		t.Fatalf("pin type = %q, want manual", p.Type)
	}
	if p.Importance != memory.DefaultPinImportance {
		t.Fatalf("pin importance = %v", p.Importance)
	}

	reply, _ = router.Execute(ctx, "s-1", "/pins")
	if !strings.Contains(reply, "penicillin") {
		t.Fatalf("pins listing = %q", reply)
	}
}

func TestPinWithoutTextShowsUsage(t *testing.T) {
	router, pins := testRouter()

	reply, _ := router.Execute(context.Background(), "s-1", "/pin")
	if !strings.HasPrefix(reply, "Usage:") {
		t.Fatalf("reply = %q", reply)
	}
	if len(pins.pins) != 0 {
		t.Fatal("empty pin must not be stored")
	}
}
