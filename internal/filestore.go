package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskFileStore keeps uploaded chat files under one directory, renamed
// to a random name so uploads can never collide or escape the root.
type DiskFileStore struct {
	root string
}

func NewDiskFileStore(root string) (*DiskFileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", root, err)
	}
	return &DiskFileStore{root: root}, nil
}

// Save writes the content under a fresh random name, keeping the
// original extension so static file servers pick the right content type.
func (s *DiskFileStore) Save(_ context.Context, originalName string, content []byte) (string, error) {
	storedName := uuid.NewString() + filepath.Ext(filepath.Base(originalName))
	if err := os.WriteFile(filepath.Join(s.root, storedName), content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", storedName, err)
	}
	return storedName, nil
}
