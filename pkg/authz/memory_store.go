package authz

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type bindingKey struct {
	userID     uuid.UUID
	roleID     int16
	resourceID uuid.UUID
}

// MemoryBindingStore is a mutex-guarded in-memory BindingStore for tests and
// local runs.
type MemoryBindingStore struct {
	mu    sync.RWMutex
	items map[bindingKey]Binding

	failNextCreate error
}

// NewMemoryBindingStore creates an empty in-memory binding store.
func NewMemoryBindingStore() *MemoryBindingStore {
	return &MemoryBindingStore{items: make(map[bindingKey]Binding)}
}

func (s *MemoryBindingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Binding
	for _, b := range s.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryBindingStore) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Binding
	for _, b := range s.items {
		if b.ResourceID == resourceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryBindingStore) Create(ctx context.Context, b Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNextCreate; err != nil {
		s.failNextCreate = nil
		return err
	}

	key := bindingKey{userID: b.UserID, roleID: b.RoleID, resourceID: b.ResourceID}
	if _, ok := s.items[key]; ok {
		return ErrAlreadyAssigned
	}
	s.items[key] = b
	return nil
}

func (s *MemoryBindingStore) Delete(ctx context.Context, userID uuid.UUID, roleID int16, resourceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bindingKey{userID: userID, roleID: roleID, resourceID: resourceID}
	if _, ok := s.items[key]; !ok {
		return ErrBindingNotFound
	}
	delete(s.items, key)
	return nil
}

// Snapshot captures the current state and returns a function restoring it.
func (s *MemoryBindingStore) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[bindingKey]Binding, len(s.items))
	for k, b := range s.items {
		saved[k] = b
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items = saved
	}
}

// FailNextCreate makes the next Create return err. Used for fault injection
// in bootstrap atomicity tests.
func (s *MemoryBindingStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextCreate = err
}
