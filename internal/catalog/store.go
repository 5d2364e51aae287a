package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/velora/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ProductLister fetches the full active product set, ordered by id ascending.
// Consumers define this interface, not the Postgres implementation.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Store holds an in-memory snapshot of the catalog keyed by product id.
// Reload replaces the snapshot wholesale; a failed reload keeps the previous
// snapshot so the storefront keeps displaying stale products instead of none.
type Store struct {
	source ProductLister
	sfg    singleflight.Group // collapses concurrent reloads

	mu       sync.RWMutex
	products map[string]domain.Product
	ordered  []domain.Product
}

func NewStore(source ProductLister) *Store {
	return &Store{
		source:   source,
		products: make(map[string]domain.Product),
	}
}

func (s *Store) Reload(ctx context.Context) error {
	_, err, _ := s.sfg.Do("reload", func() (interface{}, error) {
		listed, err := s.source.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}

		byID := make(map[string]domain.Product, len(listed))
		for _, p := range listed {
			byID[p.ID] = p
		}

		s.mu.Lock()
		s.products = byID
		s.ordered = listed
		s.mu.Unlock()

		return nil, nil
	})
	return err
}

// Lookup never fails: cart lines may reference discontinued products, which
// still display with degraded info.
func (s *Store) Lookup(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// List returns the current snapshot in id-ascending order.
func (s *Store) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.ordered))
	copy(out, s.ordered)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
