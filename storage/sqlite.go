// SQLite row store.
//
// Information Hiding:
// - SQLite connection management hidden behind the Store interface
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements Store using a SQLite database file. Creation
// times are stored as unix milliseconds so ordering survives the
// round-trip exactly.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist. The schema is NOT
// provisioned here; run EnsureSchema (the setup command does) before
// first use, or reads will report ErrUnprovisioned.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

// NewSqliteInMemory creates a provisioned in-memory store (useful for
// testing and the examples).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the chat and media tables if they are missing.
func (s *SqliteStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_turns (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_turns_user
		ON chat_turns(user_id, created_at ASC);

		CREATE TABLE IF NOT EXISTS media_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			prompt TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			UNIQUE(user_id, storage_path)
		);

		CREATE INDEX IF NOT EXISTS idx_media_items_user
		ON media_items(user_id, created_at DESC);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// sqliteWrap upgrades SQLite's missing-table error to the structured
// unprovisioned condition; other errors pass through unchanged.
func sqliteWrap(err error) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return markUnprovisioned(err)
	}
	return err
}

// ListTurns loads a user's conversation turns oldest first.
func (s *SqliteStore) ListTurns(ctx context.Context, userID string) ([]ChatTurnRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, sender, content, created_at FROM chat_turns WHERE user_id = ? ORDER BY created_at ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", sqliteWrap(err))
	}
	defer rows.Close()

	turns := []ChatTurnRow{} // Start with empty slice, not nil
	for rows.Next() {
		var turn ChatTurnRow
		var createdMillis int64
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Sender, &turn.Text, &createdMillis); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.CreatedAt = time.UnixMilli(createdMillis).UTC()
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// AppendTurns writes the rows in one transaction.
func (s *SqliteStore) AppendTurns(ctx context.Context, turns []ChatTurnRow) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// defer tx.Rollback() is safe even after Commit() - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chat_turns (id, user_id, sender, content, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", sqliteWrap(err))
	}
	defer stmt.Close()

	for _, turn := range turns {
		_, err = stmt.ExecContext(ctx, turn.ID, turn.UserID, turn.Sender, turn.Text, turn.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert turn: %w", sqliteWrap(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteTurns removes all turns for a user.
func (s *SqliteStore) DeleteTurns(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM chat_turns WHERE user_id = ?",
		userID)
	if err != nil {
		return fmt.Errorf("failed to delete turns: %w", sqliteWrap(err))
	}
	return nil
}

// ListMedia loads a user's media records newest first.
func (s *SqliteStore) ListMedia(ctx context.Context, userID string) ([]MediaRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, prompt, storage_path, created_at FROM media_items WHERE user_id = ? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", sqliteWrap(err))
	}
	defer rows.Close()

	records := []MediaRecord{} // Start with empty slice, not nil
	for rows.Next() {
		var record MediaRecord
		var createdMillis int64
		if err := rows.Scan(&record.ID, &record.UserID, &record.Prompt, &record.StoragePath, &createdMillis); err != nil {
			return nil, fmt.Errorf("failed to scan media record: %w", err)
		}
		record.CreatedAt = time.UnixMilli(createdMillis).UTC()
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media records: %w", err)
	}

	return records, nil
}

// InsertMedia writes one media record.
func (s *SqliteStore) InsertMedia(ctx context.Context, record MediaRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO media_items (id, user_id, prompt, storage_path, created_at) VALUES (?, ?, ?, ?, ?)",
		record.ID, record.UserID, record.Prompt, record.StoragePath, record.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert media record: %w", sqliteWrap(err))
	}
	return nil
}

// DeleteMedia removes the record matching (userID, storagePath).
func (s *SqliteStore) DeleteMedia(ctx context.Context, userID, storagePath string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM media_items WHERE user_id = ? AND storage_path = ?",
		userID, storagePath)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", sqliteWrap(err))
	}
	return nil
}

// Verify SqliteStore implements Store
var _ Store = (*SqliteStore)(nil)
