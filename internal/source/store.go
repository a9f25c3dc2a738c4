package source

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/shinyvision/phpreflect/internal/parser"
)

type storedDocument struct {
	path   string
	doc    *Document
	isOpen bool
}

// Store maintains a bounded set of parsed documents keyed by path.
// Documents registered as open are never evicted.
type Store struct {
	mu      sync.Mutex
	parser  parser.Parser
	max     int
	entries []*storedDocument
	index   map[string]*storedDocument
}

// NewStore constructs a store with the provided maximum size.
func NewStore(p parser.Parser, max int) *Store {
	if max <= 0 {
		max = 1000
	}
	return &Store{
		parser:  p,
		max:     max,
		entries: make([]*storedDocument, 0, max),
		index:   make(map[string]*storedDocument),
	}
}

// Get retrieves or loads (and caches) the document for path.
func (s *Store) Get(path string) (*Document, error) {
	path = normalizePath(path)
	if path == "" {
		return nil, errors.New("empty path")
	}

	s.mu.Lock()
	if entry, ok := s.index[path]; ok && entry.doc != nil {
		s.moveToEndLocked(entry)
		s.mu.Unlock()
		return entry.doc, nil
	}
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(s.parser, path, data, false)
	if err != nil {
		return nil, err
	}
	return s.put(path, doc, false), nil
}

// Open parses in-memory content for path and pins it until Close.
func (s *Store) Open(path string, content []byte) (*Document, error) {
	path = normalizePath(path)
	if path == "" {
		return nil, errors.New("empty path")
	}
	doc, err := ParseDocument(s.parser, path, content, false)
	if err != nil {
		return nil, err
	}
	return s.put(path, doc, true), nil
}

// Close marks a document as no longer open. It becomes eligible for eviction.
func (s *Store) Close(path string) {
	path = normalizePath(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.index[path]; ok {
		entry.isOpen = false
	}
}

// Remove drops path so the next Get reads it from disk again.
func (s *Store) Remove(path string) {
	path = normalizePath(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.index[path]
	if !ok {
		return
	}
	delete(s.index, path)
	for i, e := range s.entries {
		if e == entry {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
}

func (s *Store) put(path string, doc *Document, open bool) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.index[path]; ok {
		if open || entry.doc == nil {
			entry.doc = doc
		}
		entry.isOpen = entry.isOpen || open
		s.moveToEndLocked(entry)
		return entry.doc
	}

	entry := &storedDocument{path: path, doc: doc, isOpen: open}
	s.entries = append(s.entries, entry)
	s.index[path] = entry
	s.ensureCapacityLocked()
	return doc
}

func (s *Store) moveToEndLocked(entry *storedDocument) {
	idx := -1
	for i, e := range s.entries {
		if e == entry {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(s.entries)-1 {
		return
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.entries = append(s.entries, entry)
}

func (s *Store) ensureCapacityLocked() {
	for len(s.entries) > s.max {
		evicted := false
		for i, entry := range s.entries {
			if entry.isOpen {
				continue
			}
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			delete(s.index, entry.path)
			evicted = true
			break
		}
		if !evicted {
			break
		}
	}
}

func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
