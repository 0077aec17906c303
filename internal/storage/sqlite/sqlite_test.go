package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/carelog/carebot/internal/core"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "carebot.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustSession(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	if _, err := NewSessionsRepo(db).GetOrCreate(context.Background(), id, "test-model"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
}

func TestSessionsRepo(t *testing.T) {
	db := testDB(t)
	repo := NewSessionsRepo(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	s, err := repo.GetOrCreate(ctx, "s-1", "test-model")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if s.ID != "s-1" || s.ModelID != "test-model" || s.SubjectID != "" {
		t.Fatalf("unexpected session: %+v", s)
	}

	// Idempotent.
	again, err := repo.GetOrCreate(ctx, "s-1", "other-model")
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if again.ModelID != "test-model" {
		t.Fatalf("second GetOrCreate overwrote model: %q", again.ModelID)
	}

	if err := repo.SetSubject(ctx, "s-1", "p-1"); err != nil {
		t.Fatalf("SetSubject: %v", err)
	}
	s, err = repo.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.SubjectID != "p-1" {
		t.Fatalf("subject = %q, want p-1", s.SubjectID)
	}

	if err := repo.SetSubject(ctx, "missing", "p-1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("SetSubject(missing) = %v, want ErrNotFound", err)
	}
}

func TestMessagesRepoOrdering(t *testing.T) {
	db := testDB(t)
	mustSession(t, db, "s-1")
	repo := NewMessagesRepo(db)
	ctx := context.Background()

	ids := []string{"m-1", "m-2", "m-3", "m-4"}
	for _, id := range ids {
		err := repo.Add(ctx, core.StoredMessage{ID: id, SessionID: "s-1", Role: core.RoleUser, Content: "msg " + id})
		if err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}

	// Recent returns the newest window, oldest first.
	recent, err := repo.Recent(ctx, "s-1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "m-3" || recent[1].ID != "m-4" {
		t.Fatalf("Recent = %v", messageIDs(recent))
	}

	tail, err := repo.After(ctx, "s-1", "m-2")
	if err != nil {
		t.Fatalf("After: %v", err)
	}
	if got := messageIDs(tail); len(got) != 2 || got[0] != "m-3" || got[1] != "m-4" {
		t.Fatalf("After(m-2) = %v", got)
	}

	all, err := repo.After(ctx, "s-1", "")
	if err != nil {
		t.Fatalf("After(empty): %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("After(empty) returned %d messages, want 4", len(all))
	}
}

func TestMessagesRepoSetImportance(t *testing.T) {
	db := testDB(t)
	mustSession(t, db, "s-1")
	repo := NewMessagesRepo(db)
	ctx := context.Background()

	if err := repo.Add(ctx, core.StoredMessage{ID: "m-1", SessionID: "s-1", Role: core.RoleUser, Content: "hi", Importance: 0.3}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := repo.SetImportance(ctx, "m-1", 0.9); err != nil {
		t.Fatalf("SetImportance: %v", err)
	}
	msgs, err := repo.Recent(ctx, "s-1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if msgs[0].Importance != 0.9 {
		t.Fatalf("importance = %v, want 0.9", msgs[0].Importance)
	}

	if err := repo.SetImportance(ctx, "missing", 0.5); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("SetImportance(missing) = %v, want ErrNotFound", err)
	}
}

func TestSummariesRepo(t *testing.T) {
	db := testDB(t)
	mustSession(t, db, "s-1")
	repo := NewSummariesRepo(db)
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "s-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("Latest on empty session = %+v, want nil", latest)
	}

	summaries := []core.Summary{
		{ID: "sum-1", SessionID: "s-1", SummaryText: "first", MessageCount: 4, StartMessageID: "m-1", EndMessageID: "m-4", Importance: 0.6},
		{ID: "sum-2", SessionID: "s-1", SummaryText: "second", MessageCount: 3, StartMessageID: "m-5", EndMessageID: "m-7", Importance: 0.9},
	}
	for _, s := range summaries {
		if err := repo.Add(ctx, s); err != nil {
			t.Fatalf("Add(%s): %v", s.ID, err)
		}
	}

	latest, err = repo.Latest(ctx, "s-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.ID != "sum-2" {
		t.Fatalf("Latest = %+v, want sum-2", latest)
	}

	// BySession orders by importance, then recency.
	got, err := repo.BySession(ctx, "s-1", 10)
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(got) != 2 || got[0].ID != "sum-2" || got[1].ID != "sum-1" {
		t.Fatalf("BySession order = %v", summaryIDs(got))
	}
}

func TestPinsRepoOrdering(t *testing.T) {
	db := testDB(t)
	mustSession(t, db, "s-1")
	repo := NewPinsRepo(db)
	ctx := context.Background()

	pins := []core.Pin{
		{ID: "pin-1", SessionID: "s-1", Content: "low", Importance: 0.5, Type: core.PinManual},
		{ID: "pin-2", SessionID: "s-1", Content: "high", Importance: 0.9, Type: core.PinSystem},
	}
	for _, p := range pins {
		if err := repo.Add(ctx, p); err != nil {
			t.Fatalf("Add(%s): %v", p.ID, err)
		}
	}

	got, err := repo.BySession(ctx, "s-1", 10)
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(got) != 2 || got[0].ID != "pin-2" || got[1].ID != "pin-1" {
		t.Fatalf("BySession order wrong: %+v", got)
	}
	if got[0].Type != core.PinSystem {
		t.Fatalf("pin type = %q, want system", got[0].Type)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	db := testDB(t)
	mustSession(t, db, "s-1")
	mustSession(t, db, "s-2")
	repo := NewMessagesRepo(db)
	ctx := context.Background()

	if err := repo.Add(ctx, core.StoredMessage{ID: "m-1", SessionID: "s-1", Role: core.RoleUser, Content: "one"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, core.StoredMessage{ID: "m-2", SessionID: "s-2", Role: core.RoleUser, Content: "two"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	msgs, err := repo.Recent(ctx, "s-1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "m-1" {
		t.Fatalf("session s-1 sees %v", messageIDs(msgs))
	}
}

func messageIDs(msgs []core.StoredMessage) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}

func summaryIDs(sums []core.Summary) []string {
	ids := make([]string, 0, len(sums))
	for _, s := range sums {
		ids = append(ids, s.ID)
	}
	return ids
}
