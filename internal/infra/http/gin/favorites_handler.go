package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	favoritesapp "storefront/internal/app/handlers/favorites"
	"storefront/internal/app/queries"
)

type FavoritesHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h FavoritesHandler) Toggle(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	cmd := favoritesapp.ToggleFavoriteCommand{ClientID: p.ClientID, ProfileID: c.Param("id")}
	res, err := commands.Dispatch[favoritesapp.ToggleFavoriteCommand, *dto.FavoriteToggle](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h FavoritesHandler) List(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := queries.Ask[favoritesapp.ListFavoritesQuery, *dto.Favorites](c.Request.Context(), h.Queries, favoritesapp.ListFavoritesQuery{ClientID: p.ClientID})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ FavoritesHTTP = FavoritesHandler{}
