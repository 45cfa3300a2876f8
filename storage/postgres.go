// Postgres row store.
//
// Information Hiding:
// - Connection management and DSN handling behind the Store interface
// - Postgres error-code mapping (undefined_table) encapsulated

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore implements Store on a Postgres database.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to the database named by dsn and verifies the
// connection. The schema is NOT provisioned here; run EnsureSchema (the
// setup command does) before first use, or reads will report
// ErrUnprovisioned.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach Postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the chat and media tables if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_turns (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_turns_user
		ON chat_turns(user_id, created_at ASC);

		CREATE TABLE IF NOT EXISTS media_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			prompt TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
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

// pgWrap upgrades Postgres' undefined_table error to the structured
// unprovisioned condition; other errors pass through unchanged.
func pgWrap(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUndefinedTable {
		return markUnprovisioned(err)
	}
	return err
}

// ListTurns loads a user's conversation turns oldest first.
func (s *PostgresStore) ListTurns(ctx context.Context, userID string) ([]ChatTurnRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, sender, content, created_at FROM chat_turns WHERE user_id = $1 ORDER BY created_at ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", pgWrap(err))
	}
	defer rows.Close()

	turns := []ChatTurnRow{} // Start with empty slice, not nil
	for rows.Next() {
		var turn ChatTurnRow
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Sender, &turn.Text, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.CreatedAt = turn.CreatedAt.UTC()
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// AppendTurns writes the rows in one transaction.
func (s *PostgresStore) AppendTurns(ctx context.Context, turns []ChatTurnRow) error {
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
		"INSERT INTO chat_turns (id, user_id, sender, content, created_at) VALUES ($1, $2, $3, $4, $5)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", pgWrap(err))
	}
	defer stmt.Close()

	for _, turn := range turns {
		_, err = stmt.ExecContext(ctx, turn.ID, turn.UserID, turn.Sender, turn.Text, turn.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert turn: %w", pgWrap(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteTurns removes all turns for a user.
func (s *PostgresStore) DeleteTurns(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM chat_turns WHERE user_id = $1",
		userID)
	if err != nil {
		return fmt.Errorf("failed to delete turns: %w", pgWrap(err))
	}
	return nil
}

// ListMedia loads a user's media records newest first.
func (s *PostgresStore) ListMedia(ctx context.Context, userID string) ([]MediaRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, prompt, storage_path, created_at FROM media_items WHERE user_id = $1 ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", pgWrap(err))
	}
	defer rows.Close()

	records := []MediaRecord{} // Start with empty slice, not nil
	for rows.Next() {
		var record MediaRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.Prompt, &record.StoragePath, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media record: %w", err)
		}
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media records: %w", err)
	}

	return records, nil
}

// InsertMedia writes one media record.
func (s *PostgresStore) InsertMedia(ctx context.Context, record MediaRecord) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO media_items (id, user_id, prompt, storage_path, created_at) VALUES ($1, $2, $3, $4, $5)",
		record.ID, record.UserID, record.Prompt, record.StoragePath, record.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert media record: %w", pgWrap(err))
	}
	return nil
}

// DeleteMedia removes the record matching (userID, storagePath).
func (s *PostgresStore) DeleteMedia(ctx context.Context, userID, storagePath string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM media_items WHERE user_id = $1 AND storage_path = $2",
		userID, storagePath)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", pgWrap(err))
	}
	return nil
}

// Verify PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)
