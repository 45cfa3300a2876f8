// Package storage provides durable per-user chat history and media
// metadata behind interchangeable drivers.
//
// Information Hiding:
// - Backend implementation details hidden behind interfaces
// - Allows swapping between memory, SQLite, Postgres, Mongo without API changes
// - Missing-schema detection encapsulated (see ErrUnprovisioned)
//
// The stores are multi-tenant: every operation is scoped by userID and
// no driver does cross-user queries. The stores do no client-side
// locking; callers serialize their own writes per user.
package storage

import (
	"context"
	"time"
)

// Sender values recorded on chat turn rows.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatTurnRow is one persisted line of a user's conversation.
type ChatTurnRow struct {
	ID        string
	UserID    string
	Sender    string
	Text      string
	CreatedAt time.Time
}

// MediaRecord is the metadata row for one stored media object. The
// binary payload lives in the blob store under StoragePath; only the
// metadata is kept here.
type MediaRecord struct {
	ID          string
	UserID      string
	Prompt      string
	StoragePath string
	CreatedAt   time.Time
}

// HistoryStore persists conversation turns.
type HistoryStore interface {
	// ListTurns returns a user's turns ordered oldest first.
	// Returns an empty slice (not nil) when the user has no history.
	ListTurns(ctx context.Context, userID string) ([]ChatTurnRow, error)

	// AppendTurns writes the given rows in one batch.
	AppendTurns(ctx context.Context, turns []ChatTurnRow) error

	// DeleteTurns removes all of a user's turns.
	DeleteTurns(ctx context.Context, userID string) error
}

// GalleryStore persists media metadata rows.
type GalleryStore interface {
	// ListMedia returns a user's records ordered newest first.
	// Returns an empty slice (not nil) when the user has no media.
	ListMedia(ctx context.Context, userID string) ([]MediaRecord, error)

	// InsertMedia writes one record.
	InsertMedia(ctx context.Context, record MediaRecord) error

	// DeleteMedia removes the record matching (userID, storagePath).
	DeleteMedia(ctx context.Context, userID, storagePath string) error
}

// Store is the full row-store surface a backend driver provides.
type Store interface {
	HistoryStore
	GalleryStore

	// EnsureSchema provisions tables or collections. Opening a store
	// does not provision; a store used before EnsureSchema reports
	// ErrUnprovisioned-class errors on reads and writes.
	EnsureSchema(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
