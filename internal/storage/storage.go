// Package storage persists the whole application dataset as a single JSON
// document on disk and provides an atomic read-modify-write primitive over it.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/models"
)

const fileName = "db.json"

// Store owns the on-disk document. All reads and mutations go through the
// store's mutex, so a read-modify-write cycle never interleaves with another.
type Store struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// New creates a store persisting to <dataDir>/db.json. The directory is created
// lazily on first write.
func New(dataDir string, log *zap.Logger) *Store {
	return &Store{
		path: filepath.Join(dataDir, fileName),
		log:  log,
	}
}

// Read returns the current document. A missing file yields a fresh empty
// document (which is written out so subsequent readers see a valid file); an
// unreadable or corrupt file degrades to the empty document with a logged
// diagnostic rather than an error. Data loss beats crash-looping at this tier.
func (s *Store) Read() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Mutate atomically applies fn to the current document and persists the result.
// fn must return the new document; returning an error aborts the cycle and
// nothing is persisted. The returned document is the persisted one.
func (s *Store) Mutate(fn func(models.Document) (models.Document, error)) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	next, err := fn(doc)
	if err != nil {
		return models.Document{}, err
	}
	if err := s.write(next); err != nil {
		return models.Document{}, fmt.Errorf("persisting document: %w", err)
	}
	return next, nil
}

// Reset replaces the persisted document with a fresh empty one.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(models.EmptyDocument())
}

// read loads the document without locking; callers hold s.mu.
func (s *Store) read() models.Document {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := models.EmptyDocument()
		if werr := s.write(doc); werr != nil {
			s.log.Warn("initializing document file", zap.String("path", s.path), zap.Error(werr))
		}
		return doc
	}
	if err != nil {
		s.log.Error("reading document, falling back to empty", zap.String("path", s.path), zap.Error(err))
		return models.EmptyDocument()
	}

	doc := models.EmptyDocument()
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Error("corrupt document, falling back to empty", zap.String("path", s.path), zap.Error(err))
		return models.EmptyDocument()
	}
	return doc
}

// write persists doc via a temp file and rename, so a crash mid-write leaves
// the previous valid document intact.
func (s *Store) write(doc models.Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
