package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/project"
)

// MemoryStore is an in-memory Store for tests and local development. It is
// constructed per process and injected explicitly, never reached through
// ambient globals.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]string // id → JSON doc
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]string)}
}

// LoadProject implements Store.
func (m *MemoryStore) LoadProject(ctx context.Context, id string) (*project.Project, error) {
	m.mu.RLock()
	doc, ok := m.projects[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, serrors.ErrNotFound)
	}
	var p project.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

// SaveProject implements Store.
func (m *MemoryStore) SaveProject(ctx context.Context, p *project.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	m.mu.Lock()
	m.projects[p.ID] = string(doc)
	m.mu.Unlock()
	return nil
}

// ReplaceProject implements Store.
func (m *MemoryStore) ReplaceProject(ctx context.Context, p *project.Project) error {
	p.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, serrors.ErrNotFound)
	}
	m.projects[p.ID] = string(doc)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
