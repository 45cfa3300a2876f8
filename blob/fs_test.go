package blob

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFSStoreUploadAndSignedURL(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	data := []byte{0x89, 0x50, 0x4e, 0x47}

	if err := store.Upload(ctx, "alice/2026-03-01T12:00:00.000Z.png", data, "image/png"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	url, err := store.SignedURL(ctx, "alice/2026-03-01T12:00:00.000Z.png", time.Hour)
	if err != nil {
		t.Fatalf("SignedURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("expected file:// URL, got %q", url)
	}

	written, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		t.Fatalf("failed to read written object: %v", err)
	}
	if string(written) != string(data) {
		t.Error("object content does not match uploaded data")
	}
}

func TestFSStoreSignedURLMissingObject(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if _, err := store.SignedURL(context.Background(), "nobody/missing.png", time.Hour); err == nil {
		t.Error("expected error signing a missing object")
	}
}

func TestFSStoreRemove(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Upload(ctx, "alice/a.png", []byte{1}, "image/png"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := store.Remove(ctx, []string{"alice/a.png"}); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := store.SignedURL(ctx, "alice/a.png", time.Hour); err == nil {
		t.Error("expected object to be gone after Remove")
	}
}

func TestFSStoreRemoveMissingIsNoError(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Remove(context.Background(), []string{"alice/never-existed.png"}); err != nil {
		t.Errorf("removing a missing object should not error, got: %v", err)
	}
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	for _, path := range []string{"../escape.png", "/etc/passwd", "a/../../b.png"} {
		if err := store.Upload(ctx, path, []byte{1}, "image/png"); err == nil {
			t.Errorf("expected traversal path %q to be rejected", path)
		}
	}
}
