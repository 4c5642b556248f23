package backoffice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/middleware"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/domain/referral"
	"storefront/internal/infra/storage/memory"
)

var now = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

type env struct {
	bus       commands.Bus
	store     *memory.CatalogStore
	overlay   *memory.SettingsOverlay
	referrers *memory.ReferrerDirectory
}

func newEnv(t *testing.T) env {
	t.Helper()
	store := memory.NewCatalogStore()
	store.Swap(catalog.NewCatalog([]catalog.Profile{{
		ID: "anna", Name: "Anna", Price: 10, Images: []string{"a.jpg"},
	}}, catalog.DefaultSiteSettings(), now))
	e := env{
		store:     store,
		overlay:   memory.NewSettingsOverlay(memory.FixtureSource{Path: t.TempDir() + "/missing.json"}),
		referrers: memory.NewReferrerDirectory(),
	}
	e.referrers.AddWorker("w1", order.Referrer{Name: "Max", TelegramID: 900})

	bus := commands.NewInMemoryBus()
	(&Handlers{
		Settings:  e.overlay,
		Store:     store,
		Referrals: e.referrers,
		Clock:     func() time.Time { return now },
	}).Register(bus)
	e.bus = middleware.ChainCommands(bus,
		middleware.Validation(middleware.NewStructValidator()),
		middleware.Authorization(NewAdminGate([]int64{1})),
	)
	return e
}

func (e env) update(cmd UpdateSiteSettingsCommand) (*dto.Settings, error) {
	return commands.Dispatch[UpdateSiteSettingsCommand, *dto.Settings](context.Background(), e.bus, cmd)
}

func TestUpdateSiteSettingsAppliesImmediately(t *testing.T) {
	e := newEnv(t)
	got, err := e.update(UpdateSiteSettingsCommand{AdminID: 1, SupportContact: "new_support"})
	require.NoError(t, err)
	assert.Equal(t, "@new_support", got.SupportContact)
	assert.Equal(t, catalog.DefaultPaymentDestination, got.PaymentDestination)

	live := e.store.Current()
	assert.Equal(t, "@new_support", live.Settings().SupportContact)
	assert.Equal(t, 1, live.Len())

	saved, err := e.overlay.LoadSiteSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "@new_support", saved.SupportContact)
}

func TestUpdateSiteSettingsValidatesCard(t *testing.T) {
	e := newEnv(t)
	_, err := e.update(UpdateSiteSettingsCommand{AdminID: 1, PaymentDestination: "1234"})
	assert.ErrorIs(t, err, catalog.ErrInvalidPaymentDestination)
	_, err = e.update(UpdateSiteSettingsCommand{AdminID: 1})
	assert.ErrorIs(t, err, catalog.ErrNothingToUpdate)
	assert.Equal(t, catalog.DefaultPaymentDestination, e.store.Current().Settings().PaymentDestination)
}

func TestUpdateSiteSettingsNeedsAdmin(t *testing.T) {
	e := newEnv(t)
	_, err := e.update(UpdateSiteSettingsCommand{AdminID: 2, SupportContact: "@x"})
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Equal(t, catalog.DefaultSupportContact, e.store.Current().Settings().SupportContact)
}

func TestRegisterReferralLinksClientOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res, err := commands.Dispatch[RegisterReferralCommand, *dto.ReferralRegistration](ctx, e.bus, RegisterReferralCommand{
		Code: "w1", TelegramID: 42, Username: "@ivan",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.ClientID)
	assert.Equal(t, now, res.RegisteredAt)

	ref, err := e.referrers.Referrer(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Max", ref.Name)

	_, err = e.bus.Dispatch(ctx, RegisterReferralCommand{Code: "w1", TelegramID: 42})
	assert.ErrorIs(t, err, referral.ErrAlreadyReferred)
	_, err = e.bus.Dispatch(ctx, RegisterReferralCommand{Code: "ghost", TelegramID: 43})
	assert.ErrorIs(t, err, referral.ErrUnknownCode)
	_, err = e.bus.Dispatch(ctx, RegisterReferralCommand{Code: "w1"})
	assert.ErrorIs(t, err, middleware.ErrValidation)
}
