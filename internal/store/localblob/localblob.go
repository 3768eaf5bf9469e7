// Package localblob stores audio artifacts on the local filesystem. The
// API server exposes the directory under the configured URL prefix, so
// the returned URLs are relative.
package localblob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes blobs under a base directory.
type Store struct {
	dir       string
	urlPrefix string
}

// New creates a store writing under dir. URLs are urlPrefix + name.
func New(dir, urlPrefix string) *Store {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Store{dir: dir, urlPrefix: urlPrefix}
}

// Dir returns the base directory, for serving it over HTTP.
func (s *Store) Dir() string { return s.dir }

// URLPrefix returns the prefix blob URLs are formed under.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Put writes data to dir/name, creating parent directories as needed, and
// returns the relative URL the artifact is served at. The content type is
// ignored; the extension in name carries it.
func (s *Store) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating audio directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing audio file: %w", err)
	}
	return s.urlPrefix + name, nil
}
