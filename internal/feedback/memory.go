package feedback

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps feedback in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	records  []Record
	keywords map[string]Keyword
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{keywords: make(map[string]Keyword)}
}

func (m *MemoryRepository) Load(ctx context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Records: append([]Record(nil), m.records...)}
	for _, k := range m.keywords {
		snap.Keywords = append(snap.Keywords, k)
	}
	return snap, nil
}

func (m *MemoryRepository) Save(ctx context.Context, record Record, keywords []Keyword) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	for _, k := range keywords {
		m.keywords[k.Keyword] = k
	}
	return nil
}

func (m *MemoryRepository) Prune(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	for _, r := range m.records {
		if !r.Timestamp.Before(before) {
			kept = append(kept, r)
		}
	}
	m.records = kept
	for word, k := range m.keywords {
		if k.LastUsed.Before(before) {
			delete(m.keywords, word)
		}
	}
	return nil
}

func (m *MemoryRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	m.keywords = make(map[string]Keyword)
	return nil
}
