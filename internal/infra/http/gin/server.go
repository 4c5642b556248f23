package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"storefront/internal/infra/config"
	"storefront/internal/infra/obs"
)

type SessionHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	Navigate(c *gin.Context)
	Back(c *gin.Context)
	Home(c *gin.Context)
	SelectProfile(c *gin.Context)
	SetImage(c *gin.Context)
	ConfirmAge(c *gin.Context)
	SetSearch(c *gin.Context)
	ApplyFilters(c *gin.Context)
	ResetFilters(c *gin.Context)
	StartBooking(c *gin.Context)
	ToggleService(c *gin.Context)
	SetDuration(c *gin.Context)
	SetDate(c *gin.Context)
	SubmitBooking(c *gin.Context)
}

type CatalogHTTP interface {
	List(c *gin.Context)
	SessionCatalog(c *gin.Context)
	Featured(c *gin.Context)
	Cities(c *gin.Context)
	Profile(c *gin.Context)
	Share(c *gin.Context)
	Settings(c *gin.Context)
}

type FavoritesHTTP interface {
	Toggle(c *gin.Context)
	List(c *gin.Context)
}

type CheckoutHTTP interface {
	AttachProof(c *gin.Context)
	SubmitPayment(c *gin.Context)
}

type BackofficeHTTP interface {
	UpdateSettings(c *gin.Context)
}

type Handlers struct {
	Session        SessionHTTP
	Catalog        CatalogHTTP
	Favorites      FavoritesHTTP
	Checkout       CheckoutHTTP
	Backoffice     BackofficeHTTP
	AuthMiddleware gin.HandlerFunc
	// PaymentLimiter guards payment submission.
	PaymentLimiter gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(obsMW.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	router.GET("/metrics", obs.MetricsHandler())

	api := router.Group("/api/v1")
	if h.Session != nil {
		api.POST("/sessions", h.Session.Start)
		s := api.Group("/session")
		s.GET("", h.Session.Get)
		s.POST("/navigate", h.Session.Navigate)
		s.POST("/back", h.Session.Back)
		s.POST("/home", h.Session.Home)
		s.POST("/profile", h.Session.SelectProfile)
		s.POST("/image", h.Session.SetImage)
		s.POST("/age", h.Session.ConfirmAge)
		s.PUT("/search", h.Session.SetSearch)
		s.PUT("/filters", h.Session.ApplyFilters)
		s.DELETE("/filters", h.Session.ResetFilters)
		s.POST("/booking", h.Session.StartBooking)
		s.POST("/booking/services", h.Session.ToggleService)
		s.PUT("/booking/duration", h.Session.SetDuration)
		s.PUT("/booking/date", h.Session.SetDate)
		s.POST("/booking/submit", h.Session.SubmitBooking)
	}
	if h.Catalog != nil {
		api.GET("/catalog", h.Catalog.List)
		api.GET("/catalog/featured", h.Catalog.Featured)
		api.GET("/catalog/cities", h.Catalog.Cities)
		api.GET("/session/catalog", h.Catalog.SessionCatalog)
		api.GET("/profiles/:id", h.Catalog.Profile)
		api.GET("/profiles/:id/share", h.Catalog.Share)
		api.GET("/settings", h.Catalog.Settings)
	}
	if h.Favorites != nil {
		api.GET("/favorites", h.Favorites.List)
		api.POST("/favorites/:id/toggle", h.Favorites.Toggle)
	}
	if h.Checkout != nil {
		api.POST("/session/payment-proof", h.Checkout.AttachProof)
		payment := []gin.HandlerFunc{h.Checkout.SubmitPayment}
		if h.PaymentLimiter != nil {
			payment = append([]gin.HandlerFunc{h.PaymentLimiter}, payment...)
		}
		api.POST("/session/payment", payment...)
	}
	if h.Backoffice != nil {
		api.PUT("/admin/settings", h.Backoffice.UpdateSettings)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
