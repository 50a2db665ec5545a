package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes resume files to a directory on disk and hands out
// file:// locators. Development fallback when no bucket is configured.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create resume dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: abs}, nil
}

func (l *LocalStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	// strip any path components from the client-supplied name
	path := filepath.Join(l.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write resume %s: %w", filename, err)
	}
	return "file://" + path, nil
}

func (l *LocalStore) Open(_ context.Context, locator string) (io.ReadCloser, error) {
	path := filepath.Clean(strings.TrimPrefix(locator, "file://"))
	// exact boundary: "/data/resumes-evil" must not pass for "/data/resumes"
	if !strings.HasPrefix(path, l.dir+string(os.PathSeparator)) {
		return nil, fmt.Errorf("resume locator outside storage dir: %s", locator)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resume %s: %w", locator, err)
	}
	return f, nil
}
