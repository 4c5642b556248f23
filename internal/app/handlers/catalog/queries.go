package catalog

import (
	"context"
	"strings"

	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/queries"
	domaincatalog "storefront/internal/domain/catalog"
	"storefront/internal/domain/favorites"
)

const (
	listCatalogKey    = "catalog.list"
	sessionCatalogKey = "catalog.session"
	featuredKey       = "catalog.featured"
	citiesKey         = "catalog.cities"
	profileKey        = "catalog.profile"
	shareKey          = "catalog.share"
	settingsKey       = "catalog.settings"
	getSessionKey     = "session.get"
)

type ListCatalogQuery struct {
	Search   string `validate:"max=100"`
	Filters  *domaincatalog.FilterState
	ClientID string
}

func (ListCatalogQuery) Key() string { return listCatalogKey }

// SessionCatalogQuery lists the catalog through the session's own search and
// filters.
type SessionCatalogQuery struct {
	SessionID string `validate:"required"`
}

func (SessionCatalogQuery) Key() string { return sessionCatalogKey }

type FeaturedQuery struct {
	Limit    int `validate:"gte=0,lte=50"`
	ClientID string
}

func (FeaturedQuery) Key() string { return featuredKey }

type CitiesQuery struct{}

func (CitiesQuery) Key() string { return citiesKey }

type ProfileQuery struct {
	ID       string `validate:"required"`
	ClientID string
}

func (ProfileQuery) Key() string { return profileKey }

type ShareQuery struct {
	ID string `validate:"required"`
}

func (ShareQuery) Key() string { return shareKey }

type SettingsQuery struct{}

func (SettingsQuery) Key() string { return settingsKey }

// GetSessionQuery renders the session without consuming its notices.
type GetSessionQuery struct {
	SessionID string `validate:"required"`
}

func (GetSessionQuery) Key() string { return getSessionKey }

// Queries serves read-only views of the catalog snapshot.
type Queries struct {
	Sessions  *support.Sessions
	Favorites favorites.Repository
	// SiteURL prefixes share links.
	SiteURL string
}

func (q *Queries) current() *domaincatalog.Catalog {
	if q.Sessions == nil || q.Sessions.Catalog == nil {
		return domaincatalog.Empty()
	}
	return q.Sessions.Catalog.Current()
}

func (q *Queries) favoritesOf(ctx context.Context, clientID string) dto.FavoriteSet {
	if clientID == "" || q.Favorites == nil {
		return nil
	}
	set, err := q.Favorites.Get(ctx, clientID)
	if err != nil {
		if q.Sessions != nil && q.Sessions.Logger != nil {
			q.Sessions.Logger.WarnContext(ctx, "favorites unavailable", "client_id", clientID, "error", err)
		}
		return nil
	}
	return set
}

func (q *Queries) list(ctx context.Context, search string, filters domaincatalog.FilterState, clientID string) *dto.Catalog {
	cat := q.current()
	matched := domaincatalog.FilterCatalog(cat.Profiles(), search, filters)
	return &dto.Catalog{
		Items:   dto.MapCards(matched, q.favoritesOf(ctx, clientID)),
		Search:  search,
		Filters: filters,
		Meta: dto.CatalogMeta{
			Total:    cat.Len(),
			Count:    len(matched),
			LoadedAt: cat.LoadedAt(),
		},
	}
}

func (q *Queries) ListCatalog(ctx context.Context, query ListCatalogQuery) (*dto.Catalog, error) {
	filters := domaincatalog.DefaultFilters()
	if query.Filters != nil {
		filters = query.Filters.Clone()
	}
	return q.list(ctx, query.Search, filters, query.ClientID), nil
}

func (q *Queries) SessionCatalog(ctx context.Context, query SessionCatalogQuery) (*dto.Catalog, error) {
	s, err := q.Sessions.Repo.Get(ctx, query.SessionID)
	if err != nil {
		return nil, err
	}
	return q.list(ctx, s.Search(), s.Filters(), s.ClientID), nil
}

func (q *Queries) Featured(ctx context.Context, query FeaturedQuery) ([]dto.ProfileCard, error) {
	featured := domaincatalog.Featured(q.current().Profiles(), query.Limit)
	return dto.MapCards(featured, q.favoritesOf(ctx, query.ClientID)), nil
}

func (q *Queries) Cities(ctx context.Context, _ CitiesQuery) ([]string, error) {
	return domaincatalog.Cities(q.current().Profiles()), nil
}

func (q *Queries) Profile(ctx context.Context, query ProfileQuery) (*dto.ProfileDetail, error) {
	p, err := q.current().ByID(domaincatalog.ProfileID(query.ID))
	if err != nil {
		return nil, err
	}
	detail := dto.MapDetail(p, q.favoritesOf(ctx, query.ClientID))
	return &detail, nil
}

func (q *Queries) Share(ctx context.Context, query ShareQuery) (*dto.Share, error) {
	p, err := q.current().ByID(domaincatalog.ProfileID(query.ID))
	if err != nil {
		return nil, err
	}
	link := strings.TrimRight(q.SiteURL, "/") + "/profiles/" + string(p.ID)
	return &dto.Share{
		ProfileID: string(p.ID),
		URL:       link,
		Text:      domaincatalog.ShareText(p, link),
	}, nil
}

func (q *Queries) Settings(ctx context.Context, _ SettingsQuery) (*dto.Settings, error) {
	settings := dto.MapSettings(q.current().Settings())
	return &settings, nil
}

func (q *Queries) GetSession(ctx context.Context, query GetSessionQuery) (*dto.SessionView, error) {
	s, err := q.Sessions.Repo.Get(ctx, query.SessionID)
	if err != nil {
		return nil, err
	}
	view := q.Sessions.Render(s, nil)
	return &view, nil
}

// Register binds every catalog query to bus.
func (q *Queries) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler(bus, listCatalogKey, queries.HandlerFunc[ListCatalogQuery, *dto.Catalog](q.ListCatalog))
	queries.RegisterHandler(bus, sessionCatalogKey, queries.HandlerFunc[SessionCatalogQuery, *dto.Catalog](q.SessionCatalog))
	queries.RegisterHandler(bus, featuredKey, queries.HandlerFunc[FeaturedQuery, []dto.ProfileCard](q.Featured))
	queries.RegisterHandler(bus, citiesKey, queries.HandlerFunc[CitiesQuery, []string](q.Cities))
	queries.RegisterHandler(bus, profileKey, queries.HandlerFunc[ProfileQuery, *dto.ProfileDetail](q.Profile))
	queries.RegisterHandler(bus, shareKey, queries.HandlerFunc[ShareQuery, *dto.Share](q.Share))
	queries.RegisterHandler(bus, settingsKey, queries.HandlerFunc[SettingsQuery, *dto.Settings](q.Settings))
	queries.RegisterHandler(bus, getSessionKey, queries.HandlerFunc[GetSessionQuery, *dto.SessionView](q.GetSession))
}
