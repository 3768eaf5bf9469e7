// Package supabase uploads audio artifacts to a Supabase Storage bucket
// over its REST API and returns public object URLs.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store uploads blobs to one Supabase Storage bucket.
type Store struct {
	baseURL string
	key     string
	bucket  string
	client  *http.Client
}

// New creates a store for the project at baseURL using the service key.
func New(baseURL, key, bucket string) *Store {
	return &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		bucket:  bucket,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Put uploads data as a new object named name and returns its public URL.
// Names are never reused, so uploads do not upsert.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading to supabase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("supabase upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name), nil
}
