package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/favorites"
)

func TestMembersKeepInsertionOrder(t *testing.T) {
	members := toMembers([]catalog.ProfileID{"b", "a", "c"})
	assert.Equal(t, []redis.Z{
		{Score: 0, Member: "b"},
		{Score: 1, Member: "a"},
		{Score: 2, Member: "c"},
	}, members)
	assert.Equal(t, []catalog.ProfileID{"b", "a"}, toIDs([]string{"b", "a"}))
}

func TestClientIDRequired(t *testing.T) {
	repo := NewFavoritesRepository(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	_, err := repo.Get(context.Background(), "")
	assert.ErrorIs(t, err, favorites.ErrClientRequired)
	_, err = repo.Update(context.Background(), "", func(*favorites.Set) error { return nil })
	assert.ErrorIs(t, err, favorites.ErrClientRequired)
	assert.Equal(t, "storefront:favorites:42", favoritesKey("42"))
}
