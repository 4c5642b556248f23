package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/backoffice"
	catalogapp "storefront/internal/app/handlers/catalog"
	"storefront/internal/app/handlers/checkout"
	favoritesapp "storefront/internal/app/handlers/favorites"
	"storefront/internal/app/handlers/storefront"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/middleware"
	"storefront/internal/app/outbox"
	"storefront/internal/app/policies"
	"storefront/internal/app/queries"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/infra/obs"
	"storefront/internal/infra/security"
	"storefront/internal/infra/storage/memory"
)

type testServer struct {
	router    *gin.Engine
	notifier  *memory.Notifier
	referrers *memory.ReferrerDirectory
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewCatalogStore()
	store.Swap(catalog.NewCatalog([]catalog.Profile{{
		ID: "anna", Name: "Anna", Age: 25, City: "Moscow", Height: 168, Weight: 55,
		Price: 1000, Services: []string{"Classic", "Massage"}, Images: []string{"a.jpg"}, IsTop: true,
	}}, catalog.DefaultSiteSettings(), time.Now()))

	repo := memory.NewSessionRepository()
	favs := memory.NewFavoritesRepository()
	box := memory.NewOutbox(nil)
	notifier := memory.NewNotifier(nil)
	referrers := memory.NewReferrerDirectory()
	referrers.AddWorker("w1", order.Referrer{Name: "Max", TelegramID: 900})
	sessions := &support.Sessions{Repo: repo, Catalog: store, Outbox: box, Encoder: outbox.JSONEventEncoder{}}

	cmdBus := commands.NewInMemoryBus()
	qBus := queries.NewInMemoryBus()
	(&storefront.Handlers{Sessions: sessions}).Register(cmdBus)
	(&favoritesapp.Handlers{Repo: favs, Sessions: sessions}).Register(cmdBus, qBus)
	(&checkout.Handlers{
		Sessions:  sessions,
		Proofs:    memory.NewProofStore(),
		Gateway:   notifier,
		Referrers: referrers,
		Orders:    memory.NewOrderRepository(),
	}).Register(cmdBus)
	(&backoffice.Handlers{
		Settings:  memory.NewSettingsOverlay(memory.FixtureSource{}),
		Store:     store,
		Referrals: referrers,
	}).Register(cmdBus)
	(&catalogapp.Queries{Sessions: sessions, Favorites: favs, SiteURL: "https://example.test"}).Register(qBus)

	cmds := middleware.ChainCommands(cmdBus,
		middleware.OutboxFlush(box),
		middleware.Validation(middleware.NewStructValidator()),
		middleware.Authorization(storefront.AgeGate{Sessions: repo}),
		middleware.Authorization(backoffice.NewAdminGate([]int64{1})),
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil, checkout.Retryable),
	)
	qs := middleware.ChainQueries(qBus, middleware.QueryValidation(middleware.NewStructValidator()))

	tokens, err := security.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)
	router := NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Session:        SessionHandler{Commands: cmds, Queries: qs, Tokens: tokens},
		Catalog:        CatalogHandler{Queries: qs},
		Favorites:      FavoritesHandler{Commands: cmds, Queries: qs},
		Checkout:       CheckoutHandler{Commands: cmds},
		Backoffice:     BackofficeHandler{Commands: cmds},
		AuthMiddleware: AuthMiddleware{Tokens: tokens}.Handle,
		PaymentLimiter: NewRateLimiter(60, nil).Handle,
	})
	return testServer{router: router, notifier: notifier, referrers: referrers}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s testServer) start(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "", gin.H{"client_id": 42, "name": "Ivan", "username": "ivan"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.SessionToken](t, w).Token
}

func TestSessionRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/session", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublicCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/catalog?city=Moscow&min_age=20", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cat := decode[dto.Catalog](t, w)
	require.Len(t, cat.Items, 1)
	assert.Equal(t, 20, cat.Filters.MinAge)

	w = s.do(t, http.MethodGet, "/api/v1/catalog?min_age=30", "", nil)
	assert.Empty(t, decode[dto.Catalog](t, w).Items)

	w = s.do(t, http.MethodGet, "/api/v1/profiles/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, catalog.DefaultSupportContact, decode[dto.Settings](t, w).SupportContact)
}

func TestAgeGateReturnsForbidden(t *testing.T) {
	s := newTestServer(t)
	token := s.start(t)
	w := s.do(t, http.MethodPost, "/api/v1/session/profile", token, gin.H{"profile_id": "anna"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRejectedTransitionCarriesView(t *testing.T) {
	s := newTestServer(t)
	token := s.start(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/session/age", token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/session/profile", token, gin.H{"profile_id": "anna"}).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/session/booking", token, nil).Code)

	w := s.do(t, http.MethodPost, "/api/v1/session/booking/submit", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Error   string          `json:"error"`
		Session dto.SessionView `json:"session"`
	}](t, w)
	assert.Equal(t, "BOOKING", body.Session.View)
	require.Len(t, body.Session.Notices, 1)
}

func TestFullCheckoutOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.start(t)
	steps := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/v1/session/age", nil},
		{http.MethodPost, "/api/v1/session/profile", gin.H{"profile_id": "anna"}},
		{http.MethodPost, "/api/v1/session/booking", nil},
		{http.MethodPost, "/api/v1/session/booking/services", gin.H{"service": "Massage"}},
		{http.MethodPut, "/api/v1/session/booking/duration", gin.H{"duration": "overnight"}},
		{http.MethodPost, "/api/v1/session/booking/submit", nil},
	}
	for _, st := range steps {
		w := s.do(t, st.method, st.path, token, st.body)
		require.Equal(t, http.StatusOK, w.Code, "%s %s: %s", st.method, st.path, w.Body.String())
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="pay.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/payment-proof", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/session/payment", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	receipt := decode[dto.PaymentReceipt](t, w)
	// Overnight multiplies by 5; one service is within the free three.
	assert.Equal(t, int64(5000), receipt.TotalPrice)
	assert.Equal(t, "HOME", receipt.Session.View)

	delivered := s.notifier.Delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, "Ivan", delivered[0].ClientName)
	assert.Equal(t, "@ivan", delivered[0].ClientHandle())
}

func TestFavoritesUseClientFromToken(t *testing.T) {
	s := newTestServer(t)
	token := s.start(t)
	w := s.do(t, http.MethodPost, "/api/v1/favorites/anna/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.FavoriteToggle](t, w).Favorite)

	w = s.do(t, http.MethodGet, "/api/v1/catalog", token, nil)
	assert.True(t, decode[dto.Catalog](t, w).Items[0].Favorite)
}

func TestAdminUpdatesSettings(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "", gin.H{"client_id": 1, "name": "Admin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	admin := decode[dto.SessionToken](t, w).Token

	w = s.do(t, http.MethodPut, "/api/v1/admin/settings", admin, gin.H{"payment_destination": "2200 1111 2222 3333"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2200 1111 2222 3333", decode[dto.Settings](t, w).PaymentDestination)

	w = s.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, "2200 1111 2222 3333", decode[dto.Settings](t, w).PaymentDestination)

	w = s.do(t, http.MethodPut, "/api/v1/admin/settings", admin, gin.H{"payment_destination": "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/admin/settings", s.start(t), gin.H{"support_contact": "@x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStartSessionRegistersReferral(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/sessions", "", gin.H{"client_id": 77, "name": "Oleg", "referral_code": "w1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ref, err := s.referrers.Referrer(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, "Max", ref.Name)

	// An unknown code never blocks the session.
	w = s.do(t, http.MethodPost, "/api/v1/sessions", "", gin.H{"client_id": 78, "referral_code": "ghost"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(middleware.ReplayedError{Message: "x"}))
	assert.Equal(t, http.StatusForbidden, statusFor(storefront.ErrAgeNotConfirmed))
	assert.Equal(t, http.StatusBadGateway, statusFor(&support.RejectedError{Err: policies.ErrNotificationFailed}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
