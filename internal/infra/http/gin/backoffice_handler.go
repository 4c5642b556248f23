package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/backoffice"
)

type BackofficeHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type settingsRequest struct {
	SupportContact     string `json:"support_contact"`
	PaymentDestination string `json:"payment_destination"`
}

// UpdateSettings edits the site settings. The caller's session must belong to
// a configured administrator.
func (h BackofficeHandler) UpdateSettings(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adminID, _ := strconv.ParseInt(p.ClientID, 10, 64)
	cmd := backoffice.UpdateSiteSettingsCommand{
		AdminID:            adminID,
		SupportContact:     req.SupportContact,
		PaymentDestination: req.PaymentDestination,
	}
	res, err := commands.Dispatch[backoffice.UpdateSiteSettingsCommand, *dto.Settings](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var _ BackofficeHTTP = BackofficeHandler{}
