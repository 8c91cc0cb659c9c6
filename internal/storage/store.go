// ABOUTME: Persistent store for the memory document backed by a single JSON file
// ABOUTME: Atomic save via temp file + rename, corrupt files degrade to a fresh document
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/todo-agent/internal/models"
)

// Store owns the on-disk memory document. It is a passive load/save layer;
// all locking and in-memory state live in the memory.Manager above it.
type Store struct {
	path string
}

// NewStore creates a store for the document at path, creating the parent
// directory if needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current document from disk. A missing file creates and
// persists a fresh default document. An unreadable or structurally invalid
// file is logged and replaced with a fresh default rather than failing the
// process: this store is a best-effort assistant memory, not a system of
// record.
func (s *Store) Load() (*models.MemoryDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.freshDocument()
		}
		return nil, fmt.Errorf("reading memory file: %w", err)
	}

	var doc models.MemoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("memory file corrupted, starting fresh", "path", s.path, "error", err)
		return s.freshDocument()
	}

	doc.Normalize()
	return &doc, nil
}

// Save writes the full document atomically: serialize to a temp file in the
// same directory, then rename over the target. A concurrent reader or a
// crashed writer never observes a half-written file; on failure the previous
// file remains valid.
func (s *Store) Save(doc *models.MemoryDocument) error {
	doc.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling memory document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "memory-*.json")
	if err != nil {
		return fmt.Errorf("creating temp memory file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing temp memory file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp memory file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persisting memory file: %w", err)
	}

	return nil
}

func (s *Store) freshDocument() (*models.MemoryDocument, error) {
	doc := models.NewMemoryDocument()
	if err := s.Save(doc); err != nil {
		return nil, fmt.Errorf("persisting default document: %w", err)
	}
	return doc, nil
}
