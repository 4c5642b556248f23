package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/favorites"
)

const (
	keyPrefix      = "storefront:favorites:"
	updateAttempts = 5
)

var ErrContended = errors.New("redis: favorites update contended")

// FavoritesRepository keeps each client's favorites in a sorted set scored by
// position, so the order of addition survives.
type FavoritesRepository struct {
	rdb redis.UniversalClient
}

func NewFavoritesRepository(rdb redis.UniversalClient) *FavoritesRepository {
	return &FavoritesRepository{rdb: rdb}
}

func favoritesKey(clientID string) string {
	return keyPrefix + clientID
}

func (r *FavoritesRepository) Get(ctx context.Context, clientID string) (*favorites.Set, error) {
	if clientID == "" {
		return nil, favorites.ErrClientRequired
	}
	return r.read(ctx, r.rdb, clientID)
}

type zRanger interface {
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

func (r *FavoritesRepository) read(ctx context.Context, c zRanger, clientID string) (*favorites.Set, error) {
	members, err := c.ZRange(ctx, favoritesKey(clientID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return favorites.Restore(clientID, toIDs(members)), nil
}

func (r *FavoritesRepository) Update(ctx context.Context, clientID string, fn func(*favorites.Set) error) (*favorites.Set, error) {
	if clientID == "" {
		return nil, favorites.ErrClientRequired
	}
	key := favoritesKey(clientID)
	var result *favorites.Set
	var fnErr error
	txf := func(tx *redis.Tx) error {
		set, err := r.read(ctx, tx, clientID)
		if err != nil {
			return err
		}
		result = set
		if fnErr = fn(set); fnErr != nil {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if members := toMembers(set.IDs()); len(members) > 0 {
				pipe.ZAdd(ctx, key, members...)
			}
			return nil
		})
		return err
	}
	for i := 0; i < updateAttempts; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, fnErr
	}
	return nil, ErrContended
}

func toIDs(members []string) []catalog.ProfileID {
	ids := make([]catalog.ProfileID, 0, len(members))
	for _, m := range members {
		ids = append(ids, catalog.ProfileID(m))
	}
	return ids
}

func toMembers(ids []catalog.ProfileID) []redis.Z {
	out := make([]redis.Z, 0, len(ids))
	for i, id := range ids {
		out = append(out, redis.Z{Score: float64(i), Member: string(id)})
	}
	return out
}

var _ favorites.Repository = (*FavoritesRepository)(nil)
