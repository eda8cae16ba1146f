package tenant

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Tenant

	failNextCreate error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]*Tenant)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) GetByCode(ctx context.Context, code string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.items {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *MemoryStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.items {
		if t.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Create(ctx context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNextCreate; err != nil {
		s.failNextCreate = nil
		return err
	}

	for _, existing := range s.items {
		if existing.Code == t.Code {
			return ErrTenantExists
		}
	}
	cp := *t
	s.items[t.ID] = &cp
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Tenant, 0, len(s.items))
	for _, t := range s.items {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// Snapshot captures the current state and returns a function restoring it.
func (s *MemoryStore) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[uuid.UUID]*Tenant, len(s.items))
	for id, t := range s.items {
		cp := *t
		saved[id] = &cp
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = saved
	}
}

// FailNextCreate makes the next Create return err. Used for fault injection
// in bootstrap atomicity tests.
func (s *MemoryStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextCreate = err
}
