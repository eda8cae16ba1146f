package tenant

import (
	"context"

	"github.com/google/uuid"
)

// CachingStore layers a Cache over a Store. Point reads (Get, GetByCode) are
// served from the cache when possible; writes go straight through and prime
// the cache. List and ExistsByCode always hit the backing store.
type CachingStore struct {
	store Store
	cache Cache
}

// NewCachingStore wraps the store. A nil cache disables caching.
func NewCachingStore(store Store, cache Cache) *CachingStore {
	if cache == nil {
		cache = NoOpCache{}
	}
	return &CachingStore{store: store, cache: cache}
}

func idKey(id uuid.UUID) string { return "tenant:id:" + id.String() }

func codeKey(code string) string { return "tenant:code:" + code }

func (s *CachingStore) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	if t, ok := s.cache.Get(ctx, idKey(id)); ok {
		return t, nil
	}

	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, idKey(id), t)
	return t, nil
}

func (s *CachingStore) GetByCode(ctx context.Context, code string) (*Tenant, error) {
	if t, ok := s.cache.Get(ctx, codeKey(code)); ok {
		return t, nil
	}

	t, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, codeKey(code), t)
	return t, nil
}

func (s *CachingStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return s.store.ExistsByCode(ctx, code)
}

// Create writes through without priming the cache. The surrounding
// transaction may still roll back; reads repopulate after commit.
func (s *CachingStore) Create(ctx context.Context, t *Tenant) error {
	return s.store.Create(ctx, t)
}

func (s *CachingStore) List(ctx context.Context) ([]*Tenant, error) {
	return s.store.List(ctx)
}
