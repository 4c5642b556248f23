package favorites

import (
	"context"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/queries"
	"storefront/internal/domain/catalog"
	domainfavorites "storefront/internal/domain/favorites"
)

const (
	toggleKey = "favorites.toggle"
	listKey   = "favorites.list"
)

type ToggleFavoriteCommand struct {
	ClientID  string `validate:"required"`
	ProfileID string `validate:"required"`
}

func (ToggleFavoriteCommand) Key() string { return toggleKey }

type ListFavoritesQuery struct {
	ClientID string `validate:"required"`
}

func (ListFavoritesQuery) Key() string { return listKey }

type Handlers struct {
	Repo     domainfavorites.Repository
	Sessions *support.Sessions
}

// Toggle flips a profile in the client's favorites. Unknown profiles can
// only be removed, so stale ids left by a catalog reload can be cleaned up.
func (h *Handlers) Toggle(ctx context.Context, cmd ToggleFavoriteCommand) (*dto.FavoriteToggle, error) {
	id := catalog.ProfileID(cmd.ProfileID)
	var added bool
	set, err := h.Repo.Update(ctx, cmd.ClientID, func(s *domainfavorites.Set) error {
		if !s.Contains(id) {
			if _, err := h.Sessions.Profile(id); err != nil {
				return err
			}
		}
		added = s.Toggle(id, h.Sessions.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.Sessions.Publish(ctx, set.DrainEvents())
	return &dto.FavoriteToggle{
		ProfileID: cmd.ProfileID,
		Favorite:  added,
		Notices:   dto.MapNotices(set.DrainNotices()),
	}, nil
}

// List returns favorite cards in catalog order. Ids no longer in the catalog
// are reported in IDs but have no card.
func (h *Handlers) List(ctx context.Context, q ListFavoritesQuery) (*dto.Favorites, error) {
	set, err := h.Repo.Get(ctx, q.ClientID)
	if err != nil {
		return nil, err
	}
	var profiles []catalog.Profile
	if h.Sessions.Catalog != nil {
		profiles = h.Sessions.Catalog.Current().Profiles()
	}
	ids := make([]string, 0, set.Len())
	for _, id := range set.IDs() {
		ids = append(ids, string(id))
	}
	return &dto.Favorites{
		Items: dto.MapCards(set.List(profiles), set),
		IDs:   ids,
	}, nil
}

func (h *Handlers) Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus) {
	commands.RegisterHandler(cmds, toggleKey, commands.HandlerFunc[ToggleFavoriteCommand, *dto.FavoriteToggle](h.Toggle))
	queries.RegisterHandler(qs, listKey, queries.HandlerFunc[ListFavoritesQuery, *dto.Favorites](h.List))
}
