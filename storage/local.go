// Package storage provides the object store post images are uploaded to.
// The local implementation writes under a bucket directory and serves files
// back through a deterministic public URL (base + bucket + key).
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore stores objects on the local filesystem.
type LocalStore struct {
	dir        string
	bucket     string
	publicBase string
	maxBytes   int64
}

// NewLocalStore creates a store rooted at dir/bucket with the given size cap.
func NewLocalStore(dir, bucket, publicBase string, maxMB int) *LocalStore {
	if maxMB <= 0 {
		maxMB = 10
	}
	return &LocalStore{
		dir:        dir,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		maxBytes:   int64(maxMB) * 1024 * 1024,
	}
}

// Save writes the object under key and returns its public URL. Oversized
// uploads are rejected and partially written files removed.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if size > 0 && size > s.maxBytes {
		return "", fmt.Errorf("file size exceeds %dMB", s.maxBytes/(1024*1024))
	}

	key = filepath.Base(key) // no path traversal through the storage key
	baseDir := filepath.Join(s.dir, s.bucket)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	dstPath := filepath.Join(baseDir, key)
	out, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	lr := &io.LimitedReader{R: r, N: s.maxBytes + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	if written > s.maxBytes {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("file size exceeds %dMB", s.maxBytes/(1024*1024))
	}

	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, key), nil
}

// Path returns the on-disk location for a stored key.
func (s *LocalStore) Path(key string) string {
	return filepath.Join(s.dir, s.bucket, filepath.Base(key))
}
