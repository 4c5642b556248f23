package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"storefront/internal/app/handlers/backoffice"
	"storefront/internal/app/handlers/checkout"
	"storefront/internal/app/handlers/storefront"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/middleware"
	"storefront/internal/app/policies"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/favorites"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/referral"
	"storefront/internal/domain/session"
	"storefront/internal/infra/security"
)

var statusTable = []struct {
	err    error
	status int
}{
	{session.ErrSessionNotFound, http.StatusNotFound},
	{catalog.ErrProfileNotFound, http.StatusNotFound},
	{policies.ErrProofNotFound, http.StatusNotFound},

	{referral.ErrUnknownCode, http.StatusNotFound},

	{session.ErrSessionExists, http.StatusConflict},
	{referral.ErrAlreadyReferred, http.StatusConflict},
	{session.ErrConcurrentUpdate, http.StatusConflict},
	{session.ErrInvalidTransition, http.StatusConflict},
	{session.ErrDraftLocked, http.StatusConflict},
	{session.ErrSubmissionInFlight, http.StatusConflict},
	{session.ErrNotSubmitting, http.StatusConflict},

	{middleware.ErrValidation, http.StatusUnprocessableEntity},
	{session.ErrInvalidClientID, http.StatusUnprocessableEntity},
	{session.ErrNoProfileSelected, http.StatusUnprocessableEntity},
	{session.ErrUnknownService, http.StatusUnprocessableEntity},
	{session.ErrNoServicesSelected, http.StatusUnprocessableEntity},
	{session.ErrDateRequired, http.StatusUnprocessableEntity},
	{session.ErrProofRequired, http.StatusUnprocessableEntity},
	{pricing.ErrUnknownDuration, http.StatusUnprocessableEntity},
	{favorites.ErrClientRequired, http.StatusUnprocessableEntity},
	{checkout.ErrProofNotImage, http.StatusUnprocessableEntity},
	{catalog.ErrInvalidPaymentDestination, http.StatusUnprocessableEntity},
	{catalog.ErrSupportContactRequired, http.StatusUnprocessableEntity},
	{catalog.ErrNothingToUpdate, http.StatusUnprocessableEntity},
	{referral.ErrCodeRequired, http.StatusUnprocessableEntity},
	{referral.ErrClientRequired, http.StatusUnprocessableEntity},
	{checkout.ErrBodyRequired, http.StatusUnprocessableEntity},
	{checkout.ErrProofTooLarge, http.StatusRequestEntityTooLarge},

	{security.ErrInvalidToken, http.StatusUnauthorized},
	{storefront.ErrAgeNotConfirmed, http.StatusForbidden},
	{backoffice.ErrNotAdmin, http.StatusForbidden},
	{policies.ErrNotificationFailed, http.StatusBadGateway},
}

func statusFor(err error) int {
	for _, row := range statusTable {
		if errors.Is(err, row.err) {
			return row.status
		}
	}
	var replayed middleware.ReplayedError
	if errors.As(err, &replayed) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. A rejected transition also
// carries the session view so the client can show the notices.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	body := gin.H{"error": err.Error()}
	if view, ok := support.RejectedView(err); ok {
		body["session"] = view
	}
	c.AbortWithStatusJSON(status, body)
}
