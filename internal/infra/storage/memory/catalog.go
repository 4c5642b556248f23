package memory

import (
	"sync/atomic"

	"storefront/internal/domain/catalog"
)

// CatalogStore holds the current catalog snapshot. Readers never block the
// loader swapping in a new one.
type CatalogStore struct {
	current atomic.Pointer[catalog.Catalog]
}

func NewCatalogStore() *CatalogStore {
	s := &CatalogStore{}
	s.current.Store(catalog.Empty())
	return s
}

func (s *CatalogStore) Current() *catalog.Catalog {
	return s.current.Load()
}

func (s *CatalogStore) Swap(c *catalog.Catalog) {
	if c == nil {
		c = catalog.Empty()
	}
	s.current.Store(c)
}

var _ catalog.Reader = (*CatalogStore)(nil)
