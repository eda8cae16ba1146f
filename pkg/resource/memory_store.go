package resource

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store for tests and local runs.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]*Resource
	failCreate error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]*Resource)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return nil, ErrResourceNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) Create(ctx context.Context, r *Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreate != nil {
		err := s.failCreate
		s.failCreate = nil
		return err
	}
	if _, ok := s.items[r.ID]; ok {
		return ErrResourceExists
	}
	cp := *r
	s.items[r.ID] = &cp
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, r *Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[r.ID]
	if !ok {
		return ErrResourceNotFound
	}
	if stored.Version != r.Version {
		return ErrVersionConflict
	}

	cp := *r
	cp.Version++
	s.items[r.ID] = &cp
	r.Version = cp.Version
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrResourceNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Resource
	for _, r := range s.items {
		if r.ParentID != nil && *r.ParentID == parentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListRoots(ctx context.Context, tenantID uuid.UUID) ([]*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Resource
	for _, r := range s.items {
		if r.TenantID == tenantID && r.ParentID == nil {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Snapshot captures the current state and returns a function restoring it.
func (s *MemoryStore) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*Resource, len(s.items))
	for id, r := range s.items {
		cp := *r
		saved[id] = &cp
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = saved
	}
}

// FailNextCreate makes the next Create call return err.
func (s *MemoryStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = err
}

func (s *MemoryStore) ReplacePathPrefix(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.items {
		if r.TenantID == tenantID && strings.HasPrefix(r.Path, oldPrefix) {
			r.Path = newPrefix + strings.TrimPrefix(r.Path, oldPrefix)
		}
	}
	return nil
}
