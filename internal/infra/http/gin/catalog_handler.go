package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"storefront/internal/app/dto"
	catalogapp "storefront/internal/app/handlers/catalog"
	"storefront/internal/app/queries"
	"storefront/internal/domain/catalog"
)

type CatalogHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

type catalogParams struct {
	Search    string   `form:"search"`
	City      string   `form:"city"`
	MinAge    *int     `form:"min_age"`
	MaxAge    *int     `form:"max_age"`
	MinHeight *int     `form:"min_height"`
	MaxHeight *int     `form:"max_height"`
	MinWeight *int     `form:"min_weight"`
	MaxWeight *int     `form:"max_weight"`
	MinBust   *int     `form:"min_bust"`
	Services  []string `form:"services"`
}

// filters overlays the given parameters on the default filter.
func (p catalogParams) filters() catalog.FilterState {
	f := catalog.DefaultFilters()
	f.City = strings.TrimSpace(p.City)
	for dst, src := range map[*int]*int{
		&f.MinAge: p.MinAge, &f.MaxAge: p.MaxAge,
		&f.MinHeight: p.MinHeight, &f.MaxHeight: p.MaxHeight,
		&f.MinWeight: p.MinWeight, &f.MaxWeight: p.MaxWeight,
		&f.MinBust: p.MinBust,
	} {
		if src != nil {
			*dst = *src
		}
	}
	for _, raw := range p.Services {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Services = append(f.Services, s)
			}
		}
	}
	return f
}

func clientOf(c *gin.Context) string {
	if p, ok := currentPrincipal(c); ok {
		return p.ClientID
	}
	return ""
}

func (h CatalogHandler) List(c *gin.Context) {
	var params catalogParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filters := params.filters()
	query := catalogapp.ListCatalogQuery{Search: params.Search, Filters: &filters, ClientID: clientOf(c)}
	res, err := queries.Ask[catalogapp.ListCatalogQuery, *dto.Catalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h CatalogHandler) SessionCatalog(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := queries.Ask[catalogapp.SessionCatalogQuery, *dto.Catalog](c.Request.Context(), h.Queries, catalogapp.SessionCatalogQuery{SessionID: p.SessionID})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h CatalogHandler) Featured(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	res, err := queries.Ask[catalogapp.FeaturedQuery, []dto.ProfileCard](c.Request.Context(), h.Queries, catalogapp.FeaturedQuery{Limit: limit, ClientID: clientOf(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

func (h CatalogHandler) Cities(c *gin.Context) {
	res, err := queries.Ask[catalogapp.CitiesQuery, []string](c.Request.Context(), h.Queries, catalogapp.CitiesQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}

func (h CatalogHandler) Profile(c *gin.Context) {
	query := catalogapp.ProfileQuery{ID: c.Param("id"), ClientID: clientOf(c)}
	res, err := queries.Ask[catalogapp.ProfileQuery, *dto.ProfileDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h CatalogHandler) Share(c *gin.Context) {
	res, err := queries.Ask[catalogapp.ShareQuery, *dto.Share](c.Request.Context(), h.Queries, catalogapp.ShareQuery{ID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h CatalogHandler) Settings(c *gin.Context) {
	res, err := queries.Ask[catalogapp.SettingsQuery, *dto.Settings](c.Request.Context(), h.Queries, catalogapp.SettingsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ CatalogHTTP = CatalogHandler{}
