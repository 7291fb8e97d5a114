package store

import (
	"context"
	"sort"
	"sync"

	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/vector"
)

// MemoryStore is an in-process collection store with brute-force cosine
// ranking.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *MemoryStore) GetOrCreateCollection(_ context.Context, name string) (types.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{name: name, entries: make(map[string]models.Entry)}
		s.collections[name] = c
	}
	return c, nil
}

func (s *MemoryStore) Close() {}

type memoryCollection struct {
	name    string
	mu      sync.RWMutex
	order   []string
	entries map[string]models.Entry
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Add(_ context.Context, entries []models.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		if _, ok := c.entries[e.ID]; !ok {
			c.order = append(c.order, e.ID)
		}
		e.Embedding = append([]float32(nil), e.Embedding...)
		c.entries[e.ID] = e
	}
	return nil
}

func (c *memoryCollection) Query(_ context.Context, embedding []float32, topK int) ([]models.Match, error) {
	c.mu.RLock()
	entries := make([]models.Entry, 0, len(c.order))
	for _, id := range c.order {
		entries = append(entries, c.entries[id])
	}
	c.mu.RUnlock()

	return rank(entries, embedding, topK), nil
}

// rank orders entries by ascending cosine distance and keeps topK.
func rank(entries []models.Entry, query []float32, topK int) []models.Match {
	matches := make([]models.Match, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, models.Match{
			ID:       e.ID,
			Document: e.Document,
			Metadata: e.Metadata,
			Distance: vector.Distance(query, e.Embedding),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
