package simindex

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

// Memory is a process-local Index.
type Memory struct {
	dims int

	mu      sync.RWMutex
	records map[string]identity.Record
	now     func() time.Time
}

var _ Index = (*Memory)(nil)

// NewMemory returns an empty in-memory index. dims <= 0 accepts any length.
func NewMemory(dims int) *Memory {
	return &Memory{
		dims:    dims,
		records: make(map[string]identity.Record),
		now:     time.Now,
	}
}

func (m *Memory) Put(_ context.Context, username string, embedding identity.Embedding) error {
	if err := checkDimensions(m.dims, embedding); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	created := m.now().UTC()
	if prev, ok := m.records[username]; ok && !created.After(prev.CreatedAt) {
		created = prev.CreatedAt.Add(time.Nanosecond)
	}
	m.records[username] = identity.Record{
		Username:  username,
		Embedding: embedding.Clone(),
		CreatedAt: created,
	}
	return nil
}

func (m *Memory) Get(_ context.Context, username string) (*identity.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[username]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Embedding = rec.Embedding.Clone()
	return &rec, nil
}

func (m *Memory) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, username)
	return nil
}

func (m *Memory) DeleteIfCreatedAt(_ context.Context, username string, createdAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[username]
	if !ok || !rec.CreatedAt.Equal(createdAt) {
		return false, nil
	}
	delete(m.records, username)
	return true, nil
}

func (m *Memory) Usernames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	out := make([]string, 0, len(m.records))
	for u := range m.records {
		out = append(out, u)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}
