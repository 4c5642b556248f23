package memory

import (
	"context"
	"sync"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/favorites"
)

type FavoritesRepository struct {
	mu    sync.Mutex
	items map[string][]catalog.ProfileID
}

func NewFavoritesRepository() *FavoritesRepository {
	return &FavoritesRepository{items: make(map[string][]catalog.ProfileID)}
}

func (r *FavoritesRepository) Get(ctx context.Context, clientID string) (*favorites.Set, error) {
	if clientID == "" {
		return nil, favorites.ErrClientRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return favorites.Restore(clientID, r.items[clientID]), nil
}

func (r *FavoritesRepository) Update(ctx context.Context, clientID string, fn func(*favorites.Set) error) (*favorites.Set, error) {
	if clientID == "" {
		return nil, favorites.ErrClientRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set := favorites.Restore(clientID, r.items[clientID])
	if err := fn(set); err != nil {
		return set, err
	}
	r.items[clientID] = set.IDs()
	return set, nil
}

var _ favorites.Repository = (*FavoritesRepository)(nil)
