// Package blob provides binary object storage behind a small interface.
//
// Information Hiding:
// - Bucket layout and credentials hidden from callers
// - Signed-URL mechanics encapsulated per backend
// - Allows swapping S3-compatible and local-filesystem backends
//
// The blob store holds only payloads; the metadata rows that reference
// them live in the storage package. Callers that need both consistent
// use the media manager, which owns the write ordering.
package blob

import (
	"context"
	"time"
)

// Store is the object-storage surface the media manager writes through.
type Store interface {
	// Upload writes one object at path with the given content type.
	Upload(ctx context.Context, path string, data []byte, contentType string) error

	// Remove deletes the named objects. Removing a missing object is
	// not an error.
	Remove(ctx context.Context, paths []string) error

	// SignedURL returns a time-limited readable URL for one object.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}
