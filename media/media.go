// Package media keeps the blob store and the metadata table consistent
// under partial failure. Neither backend offers transactions across the
// other, so the manager fixes an operation order per direction and
// compensates where it can:
//
//   - Save uploads the blob, then inserts the row. A failed insert
//     triggers exactly one best-effort delete of the just-uploaded
//     blob.
//   - Delete removes the blob first, then the row.
//
// The asymmetry is intentional. Both orders err toward "never reference
// a missing blob" over "never orphan a blob": a save that half-fails
// leaves at worst an unreferenced object, and a delete that half-fails
// leaves at worst a dangling row, never a gallery entry pointing into
// the void.
//
// Information Hiding:
// - Write ordering and compensation across the two stores
// - Storage path derivation
// - Signed-URL fan-out on listing
package media

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/blob"
	"github.com/atelierhq/atelier/internal/logging"
	"github.com/atelierhq/atelier/storage"
)

// DefaultURLTTL is the signed-URL validity used when none is set.
const DefaultURLTTL = time.Hour

// Item is one gallery entry as shown to the user. URL is a derived,
// time-limited capability computed on read; it is never persisted and
// is empty when signing failed for this item.
type Item struct {
	ID          string
	Prompt      string
	StoragePath string
	CreatedAt   time.Time
	URL         string
}

// Manager coordinates the two stores for save, list, and delete.
type Manager struct {
	blobs  blob.Store
	rows   storage.GalleryStore
	ttl    time.Duration
	logger *log.Logger
}

// NewManager creates a media manager. A non-positive ttl selects
// DefaultURLTTL.
func NewManager(blobs blob.Store, rows storage.GalleryStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Manager{
		blobs:  blobs,
		rows:   rows,
		ttl:    ttl,
		logger: logging.New("media"),
	}
}

// storagePath derives the deterministic per-user object path.
func storagePath(userID string, at time.Time) string {
	return fmt.Sprintf("%s/%s.png", userID, at.UTC().Format("2006-01-02T15:04:05.000Z"))
}

// Save stores one image: blob upload first, metadata row second. The
// payload must sniff as an image. On an insert failure the just-written
// blob gets exactly one compensating delete; if that also fails the
// orphan stays and the insert failure is still what the caller sees.
// There is no automatic retry at any step.
func (m *Manager) Save(ctx context.Context, userID, prompt string, data []byte) (storage.MediaRecord, error) {
	if len(data) == 0 {
		return storage.MediaRecord{}, fmt.Errorf("empty media payload")
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return storage.MediaRecord{}, fmt.Errorf("unsupported media type %s, expected an image", detected.String())
	}

	now := time.Now().UTC()
	path := storagePath(userID, now)

	if err := m.blobs.Upload(ctx, path, data, detected.String()); err != nil {
		return storage.MediaRecord{}, &UploadError{Path: path, Err: err}
	}

	record := storage.MediaRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Prompt:      prompt,
		StoragePath: path,
		CreatedAt:   now,
	}

	if err := m.rows.InsertMedia(ctx, record); err != nil {
		compensated := true
		if rerr := m.blobs.Remove(ctx, []string{path}); rerr != nil {
			compensated = false
			m.logger.Warn("compensating blob delete failed, orphan left in place",
				"user", userID, "path", path, "err", rerr)
		}
		return storage.MediaRecord{}, &MetadataError{Path: path, Compensated: compensated, Err: err}
	}

	return record, nil
}

// List returns the user's gallery newest first, with one signed URL per
// row. The URL requests run concurrently and are reassembled by row
// index so display order is the row order, not completion order. A row
// whose signing fails is kept with an empty URL rather than dropped.
// A user with no rows gets an empty slice and no error.
func (m *Manager) List(ctx context.Context, userID string) ([]Item, error) {
	records, err := m.rows.ListMedia(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media rows: %w", err)
	}

	items := make([]Item, len(records))
	var wg sync.WaitGroup
	for i := range records {
		items[i] = Item{
			ID:          records[i].ID,
			Prompt:      records[i].Prompt,
			StoragePath: records[i].StoragePath,
			CreatedAt:   records[i].CreatedAt,
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := m.blobs.SignedURL(ctx, items[i].StoragePath, m.ttl)
			if err != nil {
				m.logger.Warn("signed URL request failed, listing item without one",
					"user", userID, "path", items[i].StoragePath, "err", err)
				return
			}
			items[i].URL = url
		}(i)
	}
	wg.Wait()

	return items, nil
}

// Delete removes one media object: blob first, then the row scoped to
// (userID, storagePath). A row-delete failure after the blob is gone
// surfaces a DeleteError without re-attempting the blob; the dangling
// row is the caller's to reconcile.
func (m *Manager) Delete(ctx context.Context, userID, path string) error {
	if !strings.HasPrefix(path, userID+"/") {
		return fmt.Errorf("storage path %s does not belong to user %s", path, userID)
	}

	if err := m.blobs.Remove(ctx, []string{path}); err != nil {
		return &DeleteError{Path: path, Stage: DeleteStageBlob, Err: err}
	}

	if err := m.rows.DeleteMedia(ctx, userID, path); err != nil {
		return &DeleteError{Path: path, Stage: DeleteStageRow, Err: err}
	}

	return nil
}
