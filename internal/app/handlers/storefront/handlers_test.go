package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/middleware"
	"storefront/internal/app/outbox"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/session"
	"storefront/internal/infra/storage/memory"
)

var testNow = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

type fixture struct {
	bus   commands.Bus
	repo  *memory.SessionRepository
	box   *memory.Outbox
	store *memory.CatalogStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewCatalogStore()
	store.Swap(catalog.NewCatalog([]catalog.Profile{{
		ID:       "anna",
		Name:     "Anna",
		Age:      25,
		City:     "Moscow",
		Price:    1000,
		Services: []string{"Classic", "Massage", "Striptease", "Role play"},
		Images:   []string{"a.jpg", "b.jpg", "c.jpg"},
	}}, catalog.DefaultSiteSettings(), testNow))

	repo := memory.NewSessionRepository()
	box := memory.NewOutbox(nil)
	h := &Handlers{Sessions: &support.Sessions{
		Repo:    repo,
		Catalog: store,
		Outbox:  box,
		Encoder: outbox.JSONEventEncoder{},
		Clock:   func() time.Time { return testNow },
	}}
	bus := commands.NewInMemoryBus()
	h.Register(bus)
	chained := middleware.ChainCommands(bus,
		middleware.OutboxFlush(box),
		middleware.Validation(middleware.NewStructValidator()),
		middleware.Authorization(AgeGate{Sessions: repo}),
	)
	return fixture{bus: chained, repo: repo, box: box, store: store}
}

func (f fixture) dispatch(t *testing.T, cmd commands.Command) (*dto.SessionView, error) {
	t.Helper()
	return commands.Dispatch[commands.Command, *dto.SessionView](context.Background(), f.bus, cmd)
}

func (f fixture) start(t *testing.T, confirmed bool) {
	t.Helper()
	_, err := f.dispatch(t, StartSessionCommand{SessionID: "s1", ClientID: "42"})
	require.NoError(t, err)
	if confirmed {
		_, err = f.dispatch(t, ConfirmAgeCommand{SessionID: "s1"})
		require.NoError(t, err)
	}
}

func TestStartSessionRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	view, err := f.dispatch(t, StartSessionCommand{SessionID: "s1", ClientID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "HOME", view.View)

	_, err = f.dispatch(t, StartSessionCommand{SessionID: "s1", ClientID: "42"})
	assert.ErrorIs(t, err, session.ErrSessionExists)
}

func TestStartSessionValidatesClientID(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"abc", "1.5", "-3", "+7", "1e3"} {
		_, err := f.dispatch(t, StartSessionCommand{SessionID: "s1", ClientID: id})
		assert.ErrorIs(t, err, middleware.ErrValidation, id)
	}
	_, err := f.dispatch(t, StartSessionCommand{SessionID: "s1", ClientID: "99999999999999999999"})
	assert.ErrorIs(t, err, session.ErrInvalidClientID)
	_, err = f.dispatch(t, StartSessionCommand{SessionID: "s1", ClientID: "0"})
	assert.ErrorIs(t, err, session.ErrInvalidClientID)
}

func TestAgeGateBlocksProfileUntilConfirmed(t *testing.T) {
	f := newFixture(t)
	f.start(t, false)

	_, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "anna"})
	assert.ErrorIs(t, err, ErrAgeNotConfirmed)

	_, err = f.dispatch(t, ConfirmAgeCommand{SessionID: "s1"})
	require.NoError(t, err)
	view, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "anna"})
	require.NoError(t, err)
	assert.Equal(t, "PROFILE", view.View)
	assert.Equal(t, "anna", view.ProfileID)
}

func TestSelectUnknownProfile(t *testing.T) {
	f := newFixture(t)
	f.start(t, true)
	_, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "ghost"})
	assert.ErrorIs(t, err, catalog.ErrProfileNotFound)
}

func TestSetImageClampsToProfileImages(t *testing.T) {
	f := newFixture(t)
	f.start(t, true)
	_, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "anna"})
	require.NoError(t, err)

	view, err := f.dispatch(t, SetImageCommand{SessionID: "s1", Index: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, view.ImageIndex)
}

func TestBookingFlowQuotesDraft(t *testing.T) {
	f := newFixture(t)
	f.start(t, true)
	_, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "anna"})
	require.NoError(t, err)
	_, err = f.dispatch(t, StartBookingCommand{SessionID: "s1"})
	require.NoError(t, err)

	for _, svc := range []string{"Classic", "Massage", "Striptease", "Role play"} {
		_, err = f.dispatch(t, ToggleServiceCommand{SessionID: "s1", Service: svc})
		require.NoError(t, err)
	}
	view, err := f.dispatch(t, SetDurationCommand{SessionID: "s1", Duration: "2 hours"})
	require.NoError(t, err)
	require.NotNil(t, view.Draft)
	assert.Equal(t, string(pricing.TwoHours), view.Draft.Duration)
	// 1000 * 2 = 2000, one paid extra service adds 5%.
	assert.Equal(t, int64(2100), view.Draft.Quote.Total.Amount)

	view, err = f.dispatch(t, SubmitBookingCommand{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMATION", view.View)
	require.Len(t, view.Notices, 1)
	assert.Equal(t, session.MessageBookingCreated, view.Notices[0].Message)
	assert.Contains(t, f.box.Published(), "session.booking_attempted")
}

func TestSubmitWithoutServicesReturnsRejectedView(t *testing.T) {
	f := newFixture(t)
	f.start(t, true)
	_, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "anna"})
	require.NoError(t, err)
	_, err = f.dispatch(t, StartBookingCommand{SessionID: "s1"})
	require.NoError(t, err)

	_, err = f.dispatch(t, SubmitBookingCommand{SessionID: "s1"})
	assert.ErrorIs(t, err, session.ErrNoServicesSelected)
	view, ok := support.RejectedView(err)
	require.True(t, ok)
	assert.Equal(t, "BOOKING", view.View)
	require.Len(t, view.Notices, 1)
	assert.Equal(t, session.MessageSelectService, view.Notices[0].Message)
}

func TestUnknownDurationIsRejectedBeforeTouchingSession(t *testing.T) {
	f := newFixture(t)
	f.start(t, true)
	_, err := f.dispatch(t, SetDurationCommand{SessionID: "s1", Duration: "forever"})
	assert.ErrorIs(t, err, pricing.ErrUnknownDuration)
}

func TestBackAndNavigate(t *testing.T) {
	f := newFixture(t)
	f.start(t, true)
	_, err := f.dispatch(t, SelectProfileCommand{SessionID: "s1", ProfileID: "anna"})
	require.NoError(t, err)

	view, err := f.dispatch(t, BackCommand{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "HOME", view.View)
	assert.Empty(t, view.ProfileID)

	view, err = f.dispatch(t, NavigateCommand{SessionID: "s1", View: "favorites"})
	require.NoError(t, err)
	assert.Equal(t, "FAVORITES", view.View)

	_, err = f.dispatch(t, NavigateCommand{SessionID: "s1", View: "BOOKING"})
	assert.ErrorIs(t, err, middleware.ErrValidation)
}

func TestSearchAndFiltersPersist(t *testing.T) {
	f := newFixture(t)
	f.start(t, false)
	_, err := f.dispatch(t, SetSearchCommand{SessionID: "s1", Text: "mos"})
	require.NoError(t, err)
	filters := catalog.DefaultFilters()
	filters.City = "Moscow"
	view, err := f.dispatch(t, ApplyFiltersCommand{SessionID: "s1", Filters: filters})
	require.NoError(t, err)
	assert.Equal(t, "mos", view.Search)
	assert.Equal(t, "Moscow", view.Filters.City)

	view, err = f.dispatch(t, ResetFiltersCommand{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultFilters(), view.Filters)
}

func TestMissingSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatch(t, BackCommand{SessionID: "nope"})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
