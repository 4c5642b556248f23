package obs

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/app/middleware"
	"storefront/internal/app/policies"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	busCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_bus_calls_total",
			Help: "Commands and queries handled, by outcome",
		},
		[]string{"kind", "key", "outcome"},
	)

	busCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_bus_call_duration_seconds",
			Help:    "Command and query handling time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "key"},
	)

	catalogProfiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_catalog_profiles",
		Help: "Profiles in the current catalog snapshot",
	})

	catalogLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_load_failures_total",
		Help: "Catalog loads that fell back to previous or default data",
	})

	outboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Outbox events handed to the broker, by result",
		},
		[]string{"result"},
	)
)

// BusObserver feeds bus outcomes into Prometheus.
type BusObserver struct{}

func (BusObserver) Observe(kind, key string, elapsed time.Duration, err error) {
	busCallsTotal.WithLabelValues(kind, key, outcome(err)).Inc()
	busCallDuration.WithLabelValues(kind, key).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, middleware.ErrValidation):
		return "invalid"
	case errors.Is(err, policies.ErrNotificationFailed):
		return "delivery_failed"
	default:
		return "error"
	}
}

// CatalogLoaded records the outcome of one catalog load.
func CatalogLoaded(profiles int, err error) {
	catalogProfiles.Set(float64(profiles))
	if err != nil {
		catalogLoadFailures.Inc()
	}
}

// OutboxPublished records one outbox delivery attempt.
func OutboxPublished(err error) {
	if err != nil {
		outboxPublished.WithLabelValues("failed").Inc()
		return
	}
	outboxPublished.WithLabelValues("sent").Inc()
}

func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

var _ middleware.Observer = BusObserver{}
