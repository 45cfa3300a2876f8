// In-memory row store.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and ephemeral sessions

package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store using in-memory maps. Data is lost when
// the process terminates. Always provisioned; EnsureSchema is a no-op.
type MemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]ChatTurnRow
	media map[string][]MediaRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns: make(map[string][]ChatTurnRow),
		media: make(map[string][]MediaRecord),
	}
}

// Close is a no-op; nothing to release.
func (s *MemoryStore) Close() error {
	return nil
}

// EnsureSchema is a no-op; the maps exist from construction.
func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

// ListTurns loads a user's conversation turns oldest first.
func (s *MemoryStore) ListTurns(ctx context.Context, userID string) ([]ChatTurnRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.turns[userID]

	// Return a copy to avoid external mutations
	copied := make([]ChatTurnRow, len(stored))
	copy(copied, stored)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.Before(copied[j].CreatedAt)
	})
	return copied, nil
}

// AppendTurns writes the rows in one batch.
func (s *MemoryStore) AppendTurns(ctx context.Context, turns []ChatTurnRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, turn := range turns {
		s.turns[turn.UserID] = append(s.turns[turn.UserID], turn)
	}
	return nil
}

// DeleteTurns removes all turns for a user.
func (s *MemoryStore) DeleteTurns(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.turns, userID)
	return nil
}

// ListMedia loads a user's media records newest first.
func (s *MemoryStore) ListMedia(ctx context.Context, userID string) ([]MediaRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.media[userID]

	// Return a copy to avoid external mutations
	copied := make([]MediaRecord, len(stored))
	copy(copied, stored)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.After(copied[j].CreatedAt)
	})
	return copied, nil
}

// InsertMedia writes one media record.
func (s *MemoryStore) InsertMedia(ctx context.Context, record MediaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.media[record.UserID] = append(s.media[record.UserID], record)
	return nil
}

// DeleteMedia removes the record matching (userID, storagePath).
func (s *MemoryStore) DeleteMedia(ctx context.Context, userID, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.media[userID]
	kept := records[:0]
	for _, record := range records {
		if record.StoragePath != storagePath {
			kept = append(kept, record)
		}
	}
	s.media[userID] = kept
	return nil
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
