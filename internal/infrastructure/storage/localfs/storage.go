package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Storage keeps uploads as flat files under one root directory.
// Saving an existing key truncates and replaces the file.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	path := s.Locate(key)
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := io.Copy(f, data)
	closeErr := f.Close()
	if copyErr != nil {
		return written, fmt.Errorf("write file: %w", copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close file: %w", closeErr)
	}
	return written, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.Locate(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// List returns the keys of all regular files in the root, sorted.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		keys = append(keys, entry.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) Locate(key string) string {
	return filepath.Join(s.basePath, key)
}
