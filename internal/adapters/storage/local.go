package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neurogen-backend/internal/config"
)

// BlobStore persists uploaded case images and returns a public URL
// for each stored object.
type BlobStore interface {
	Put(filename string, data []byte) (string, error)
}

// localStore writes blobs to a directory served as static files.
type localStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a disk-backed blob store rooted at cfg.Dir.
func NewLocalStore(cfg config.UploadConfig) (BlobStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &localStore{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Put stores the blob under its filename. Filenames are generated by
// callers (UUID plus original extension) so collisions cannot occur.
func (s *localStore) Put(filename string, data []byte) (string, error) {
	// Reject anything that could escape the upload directory
	if filename != filepath.Base(filename) || filename == "." || filename == "" {
		return "", fmt.Errorf("invalid blob filename: %q", filename)
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return s.baseURL + "/" + filename, nil
}
