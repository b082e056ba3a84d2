// Package schema provides an on-disk snapshot of the GitHub GraphQL schema.
//
// The snapshot is downloaded once, validated with gqlparser and written to
// the cache path. Later runs read it from disk. A snapshot that later fails
// to load is removed by Invalidate so the next run fetches it again.
package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

const (
	// DefaultURL is GitHub's public schema SDL.
	DefaultURL = "https://docs.github.com/public/fpt/schema.docs.graphql"

	// FileName is the snapshot file name inside the cache directory.
	FileName = "github.schema.graphql"

	// DownloadTimeout bounds the schema download.
	DownloadTimeout = 60 * time.Second
)

// Ensure Store implements the SchemaSource interface.
var _ driven.SchemaSource = (*Store)(nil)

// Store caches the schema SDL at a fixed path.
type Store struct {
	path   string
	url    string
	client *http.Client
}

// DefaultPath returns the snapshot path in the system temp directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), FileName)
}

// NewStore creates a store caching the schema from url at path.
// An empty path uses DefaultPath. An empty url disables downloading,
// which leaves the compiler schema-less unless a snapshot already exists.
func NewStore(path, url string, client *http.Client) *Store {
	if path == "" {
		path = DefaultPath()
	}
	if client == nil {
		client = &http.Client{Timeout: DownloadTimeout}
	}
	return &Store{
		path:   path,
		url:    url,
		client: client,
	}
}

// Path returns the snapshot path.
func (s *Store) Path() string {
	return s.path
}

// Schema returns the cached SDL, downloading it first when absent.
func (s *Store) Schema(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		logger.Debug("Loaded schema snapshot from %s", s.path)
		return string(data), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read schema snapshot: %w", err)
	}

	if s.url == "" {
		logger.Debug("No schema snapshot and no schema URL; compiling without validation")
		return "", nil
	}

	sdl, err := s.download(ctx)
	if err != nil {
		return "", err
	}

	if _, err := gqlparser.LoadSchema(&ast.Source{Name: FileName, Input: sdl}); err != nil {
		return "", fmt.Errorf("downloaded schema is invalid: %w", err)
	}

	if err := s.write(sdl); err != nil {
		return "", err
	}
	logger.Info("Cached GitHub schema at %s", s.path)

	return sdl, nil
}

// Invalidate removes the snapshot. A missing snapshot is not an error.
func (s *Store) Invalidate() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove schema snapshot: %w", err)
	}
	return nil
}

func (s *Store) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("build schema request: %w", err)
	}

	logger.Info("Downloading GitHub schema from %s", s.url)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download schema: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	return string(data), nil
}

// write stores the snapshot atomically so a failed write never leaves a partial file.
func (s *Store) write(sdl string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("create schema snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(sdl); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write schema snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write schema snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write schema snapshot: %w", err)
	}
	return nil
}
