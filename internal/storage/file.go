package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// FileStore keeps the document in a single JSON file.
type FileStore struct {
	path   string
	logger *log.Logger
}

// NewFileStore returns a store for path. An empty path uses DefaultPath.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &FileStore{path: path, logger: logger.WithComponent(log.ComponentStorage)}
}

// Path returns the document file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the document file. A missing file yields the default document
// and an undecodable one an empty document.
func (s *FileStore) Load(ctx context.Context) (*core.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.InfoContext(ctx, "No data file found, starting with defaults", "path", s.path)
		return core.DefaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	doc, dropped, err := decodeDocument(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Data file is corrupt, starting with an empty document",
			"path", s.path,
			log.FieldError, err)
		return core.EmptyDocument(), nil
	}
	if len(dropped) > 0 {
		s.logger.WarnContext(ctx, "Dropped records with duplicate names",
			"path", s.path,
			"dropped", dropped)
	}
	return doc, nil
}

// Save replaces the document file. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *FileStore) Save(ctx context.Context, doc *core.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.logger.DebugContext(ctx, "Document saved", "path", s.path, "bytes", len(data))
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error { return nil }
