package cdm

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// Store loads raw entity definitions and manifests from a schema root
// directory. Loaded definitions are cached for the lifetime of the Store;
// the cache is never invalidated, so callers needing fresh documents build a
// new Store. Safe for concurrent readers.
type Store struct {
	root string

	mu    sync.RWMutex
	cache map[string]*Definition
}

// NewStore returns a Store rooted at the given schema directory.
func NewStore(root string) *Store {
	return &Store{root: root, cache: make(map[string]*Definition)}
}

// Root returns the schema root directory.
func (s *Store) Root() string { return s.root }

// LoadManifest reads and parses a manifest document relative to the root.
func (s *Store) LoadManifest(file string) (*Manifest, error) {
	full := filepath.Join(s.root, file)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, &cdmsilver.NotFoundError{Path: full, Err: err}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cdm: parse manifest %s: %w", full, err)
	}
	return &m, nil
}

// LoadEntity loads a single entity definition from a document path relative
// to the root. An empty entity name selects the document's first entity.
// Results are cached by (path, entity) and shared; callers must treat them
// as immutable.
func (s *Store) LoadEntity(path, entity string) (*Definition, error) {
	key := cacheKey(path, entity)
	s.mu.RLock()
	def, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return def, nil
	}

	doc, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	for i := range doc.Definitions {
		def := &doc.Definitions[i]
		if def.EntityName == "" {
			continue
		}
		if entity == "" || def.EntityName == entity {
			s.mu.Lock()
			s.cache[key] = def
			s.mu.Unlock()
			return def, nil
		}
	}
	return nil, &cdmsilver.NotFoundError{
		Path:      path,
		Entity:    entity,
		Available: doc.EntityNames(),
	}
}

func (s *Store) readDocument(path string) (*Document, error) {
	full := filepath.Join(s.root, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, &cdmsilver.NotFoundError{Path: full, Err: err}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cdm: parse %s: %w", full, err)
	}
	return &doc, nil
}

func cacheKey(path, entity string) string {
	if entity == "" {
		entity = "*"
	}
	return path + ":" + entity
}
