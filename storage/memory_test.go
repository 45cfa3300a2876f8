package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreTurnsRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	turns := []ChatTurnRow{
		testTurn("alice", SenderUser, "Hello", base),
		testTurn("alice", SenderBot, "Hi there", base.Add(time.Second)),
	}
	if err := store.AppendTurns(ctx, turns); err != nil {
		t.Fatalf("AppendTurns failed: %v", err)
	}

	loaded, err := store.ListTurns(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(loaded))
	}
	if loaded[0].Text != "Hello" || loaded[1].Text != "Hi there" {
		t.Errorf("unexpected turns: %+v", loaded)
	}
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.AppendTurns(ctx, []ChatTurnRow{
		testTurn("alice", SenderUser, "original", time.Now().UTC()),
	}); err != nil {
		t.Fatalf("AppendTurns failed: %v", err)
	}

	first, err := store.ListTurns(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	first[0].Text = "mutated"

	second, err := store.ListTurns(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if second[0].Text != "original" {
		t.Error("mutating a returned slice leaked into the store")
	}
}

func TestMemoryStoreEmptyUser(t *testing.T) {
	store := NewMemoryStore()

	turns, err := store.ListTurns(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if turns == nil || len(turns) != 0 {
		t.Errorf("expected empty slice, got %v", turns)
	}

	records, err := store.ListMedia(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty slice, got %v", records)
	}
}

func TestMemoryStoreMediaOrderingAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := MediaRecord{ID: "1", UserID: "alice", Prompt: "old", StoragePath: "alice/a.png", CreatedAt: base}
	newer := MediaRecord{ID: "2", UserID: "alice", Prompt: "new", StoragePath: "alice/b.png", CreatedAt: base.Add(time.Minute)}

	if err := store.InsertMedia(ctx, older); err != nil {
		t.Fatalf("InsertMedia failed: %v", err)
	}
	if err := store.InsertMedia(ctx, newer); err != nil {
		t.Fatalf("InsertMedia failed: %v", err)
	}

	records, err := store.ListMedia(ctx, "alice")
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(records) != 2 || records[0].Prompt != "new" {
		t.Errorf("expected newest first, got %+v", records)
	}

	if err := store.DeleteMedia(ctx, "alice", "alice/a.png"); err != nil {
		t.Fatalf("DeleteMedia failed: %v", err)
	}

	records, err = store.ListMedia(ctx, "alice")
	if err != nil {
		t.Fatalf("ListMedia failed: %v", err)
	}
	if len(records) != 1 || records[0].StoragePath != "alice/b.png" {
		t.Errorf("unexpected records after delete: %+v", records)
	}
}

func TestMemoryStoreDeleteTurnsScopedByUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.AppendTurns(ctx, []ChatTurnRow{
		testTurn("alice", SenderUser, "alice says", now),
		testTurn("bob", SenderUser, "bob says", now),
	}); err != nil {
		t.Fatalf("AppendTurns failed: %v", err)
	}

	if err := store.DeleteTurns(ctx, "alice"); err != nil {
		t.Fatalf("DeleteTurns failed: %v", err)
	}

	bobTurns, err := store.ListTurns(ctx, "bob")
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(bobTurns) != 1 {
		t.Errorf("expected bob's turns untouched, got %d", len(bobTurns))
	}
}
