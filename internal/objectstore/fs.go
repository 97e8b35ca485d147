package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FS stores objects as files under a base directory. The server serves the
// directory back under BaseURL, so the returned references resolve without
// any external storage service.
type FS struct {
	Dir     string
	BaseURL string
}

// NewFS creates the base directory if needed and returns a filesystem store.
func NewFS(dir, baseURL string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &FS{Dir: dir, BaseURL: baseURL}, nil
}

func (s *FS) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	path := filepath.Join(s.Dir, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing object %s: %w", key, err)
	}

	return s.BaseURL + "/" + key, nil
}

func (s *FS) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.Dir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}
