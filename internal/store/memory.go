package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/writingstuff/internal/document"
)

// MemoryStore is an in-memory Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	nextDoc  int64
	nextRow  int64
	docs     map[int64]Document
	chunks   map[int64][]DocumentChunk
	chunkIDs map[string]bool
}

var _ Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[int64]Document),
		chunks:   make(map[int64][]DocumentChunk),
		chunkIDs: make(map[string]bool),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDoc++
	doc.ID = s.nextDoc
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id int64) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, userID string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []Document
	for _, d := range s.docs {
		if userID == "" || d.UserID == userID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return 0, ErrNotFound
	}
	removed := s.chunks[id]
	for _, c := range removed {
		delete(s.chunkIDs, c.ChunkID)
	}
	delete(s.chunks, id)
	delete(s.docs, id)
	return len(removed), nil
}

func (s *MemoryStore) SaveChunks(_ context.Context, documentID int64, chunks []document.Chunk, ids []string) error {
	recs, err := newChunkRecords(documentID, chunks, ids)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[documentID]; !ok {
		return fmt.Errorf("save chunks: document %d: %w", documentID, ErrNotFound)
	}
	batch := make(map[string]bool, len(ids))
	for _, id := range ids {
		if s.chunkIDs[id] || batch[id] {
			return fmt.Errorf("save chunks: duplicate chunk id %q", id)
		}
		batch[id] = true
	}

	for i := range recs {
		s.nextRow++
		recs[i].ID = s.nextRow
		s.chunkIDs[recs[i].ChunkID] = true
	}
	s.chunks[documentID] = append(s.chunks[documentID], recs...)
	return nil
}

func (s *MemoryStore) ListChunks(_ context.Context, documentID int64, skip, limit int) ([]DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.sorted(documentID), skip, normalizeLimit(limit)), nil
}

func (s *MemoryStore) SearchChunks(_ context.Context, documentID int64, query string, limit int) ([]DocumentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	var out []DocumentChunk
	for _, c := range s.sorted(documentID) {
		if strings.Contains(strings.ToLower(c.Content), needle) {
			out = append(out, c)
		}
	}
	return page(out, 0, normalizeLimit(limit)), nil
}

// sorted returns a copy of a document's chunks in chunk order. Callers hold mu.
func (s *MemoryStore) sorted(documentID int64) []DocumentChunk {
	out := append([]DocumentChunk(nil), s.chunks[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out
}

func page(chunks []DocumentChunk, skip, limit int) []DocumentChunk {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(chunks) {
		return nil
	}
	chunks = chunks[skip:]
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks
}
