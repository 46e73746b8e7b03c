// Package file implements ports.GraphStore on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
)

// DefaultDir is used when New receives an empty path.
var DefaultDir = filepath.Join(".causalgraph", "graphs")

const (
	extJSON   = ".json"
	extDOT    = ".dot"
	tmpPrefix = "tmp-"
)

// Store keeps each graph as a JSON file in a directory.
// With WithDOT, a rendered .dot file is written next to it for Graphviz.
type Store struct {
	BasePath string
	dot      bool
}

// Option configures the Store.
type Option func(*Store)

// WithDOT writes name.dot beside every saved graph.
func WithDOT(enabled bool) Option {
	return func(s *Store) {
		s.dot = enabled
	}
}

// New creates a Store rooted at basePath, DefaultDir when empty.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	s := &Store{BasePath: basePath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(name, ext string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, tmpPrefix) {
		return "", fmt.Errorf("%q: %w", name, domain.ErrInvalidName)
	}
	return filepath.Join(s.BasePath, name+ext), nil
}

// Save persists g atomically: it writes a temporary file, syncs it and renames
// it over the destination.
func (s *Store) Save(ctx context.Context, name string, g *domain.Graph) error {
	destPath, err := s.path(name, extJSON)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := writeAtomic(s.BasePath, destPath, data); err != nil {
		return err
	}

	if s.dot {
		dotPath, _ := s.path(name, extDOT)
		if err := writeAtomic(s.BasePath, dotPath, []byte(dot.Render(g))); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic goes through a temporary file in dir, which must be on the same
// filesystem as dest for the rename to be atomic.
func writeAtomic(dir, dest string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, tmpPrefix+"*"+filepath.Ext(dest))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads a graph. Every call decodes a fresh copy.
func (s *Store) Load(ctx context.Context, name string) (*domain.Graph, error) {
	filePath, err := s.path(name, extJSON)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, domain.ErrGraphNotFound)
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var g domain.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph %q: %w", name, err)
	}
	return &g, nil
}

// Delete removes a graph and its .dot companion. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	for _, ext := range []string{extJSON, extDOT} {
		filePath, err := s.path(name, ext)
		if err != nil {
			return err
		}
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete graph file: %w", err)
		}
	}
	return nil
}

// List returns the stored graph names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != extJSON || strings.HasPrefix(name, tmpPrefix) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, extJSON))
	}
	sort.Strings(names)
	return names, nil
}
