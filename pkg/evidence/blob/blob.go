// Package blob implements the content-addressed blob store: blob_id =
// sha256(bytes), shared and immutable once written (spec.md §4.1, §6).
// Grounded on the teacher's archive-file pattern in
// pkg/evidence/retention/pruner.go (os.MkdirAll + os.Create +
// defer f.Close()), generalized to a sharded directory layout with
// temp-then-rename atomic writes.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"screenrecall/pkg/evidence"
)

// Store is a directory-backed, content-addressed blob store. Blobs are
// sharded by the first two hex characters of their id (blob/<2hex>/<rest>)
// to keep any one directory from growing unbounded.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating it if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, evidence.NewStorageError("blob", "mkdir", err)
	}
	return &Store{root: dir, logger: slog.Default().With("component", "evidence.blob")}, nil
}

// Put writes data under its content hash and returns the blob_id. Put is
// idempotent: writing the same bytes twice is a no-op on the second call.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	blobID := hex.EncodeToString(sum[:])

	path := s.pathFor(blobID)
	if _, err := os.Stat(path); err == nil {
		return blobID, nil // already written; blobs are immutable
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", evidence.NewStorageError("blob", "mkdir_shard", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", evidence.NewStorageError("blob", "create_temp", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", evidence.NewStorageError("blob", "write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", evidence.NewStorageError("blob", "sync", err)
	}
	if err := tmp.Close(); err != nil {
		return "", evidence.NewStorageError("blob", "close_temp", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return "", evidence.NewStorageError("blob", "rename", err)
	}

	s.logger.Debug("blob written", "blob_id", blobID, "bytes", len(data))
	return blobID, nil
}

// Get reads back the bytes for blobID.
func (s *Store) Get(ctx context.Context, blobID string) ([]byte, error) {
	data, err := os.ReadFile(s.pathFor(blobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, evidence.NewStorageError("blob", "get", fmt.Errorf("blob %s not found", blobID))
		}
		return nil, evidence.NewStorageError("blob", "get", err)
	}
	return data, nil
}

// Reader opens a streaming reader for blobID, for large blobs.
func (s *Store) Reader(ctx context.Context, blobID string) (io.ReadCloser, error) {
	f, err := os.Open(s.pathFor(blobID))
	if err != nil {
		return nil, evidence.NewStorageError("blob", "reader", err)
	}
	return f, nil
}

// Exists reports whether blobID has been written.
func (s *Store) Exists(blobID string) bool {
	_, err := os.Stat(s.pathFor(blobID))
	return err == nil
}

func (s *Store) pathFor(blobID string) string {
	if len(blobID) < 2 {
		return filepath.Join(s.root, "short", blobID)
	}
	return filepath.Join(s.root, blobID[:2], blobID)
}
