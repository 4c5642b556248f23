package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/backoffice"
	catalogapp "storefront/internal/app/handlers/catalog"
	"storefront/internal/app/handlers/storefront"
	"storefront/internal/app/queries"
	"storefront/internal/domain/catalog"
	"storefront/internal/infra/security"
)

type TokenIssuer interface {
	Issue(p security.Principal) (string, time.Time, error)
}

type SessionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Tokens   TokenIssuer
	Logger   *slog.Logger
}

type startSessionRequest struct {
	ClientID int64  `json:"client_id" binding:"required"`
	Name     string `json:"name"`
	Username string `json:"username"`
	// ReferralCode is the start parameter of a worker's invite link.
	ReferralCode string `json:"referral_code"`
}

func (h SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := storefront.StartSessionCommand{
		SessionID: uuid.NewString(),
		ClientID:  strconv.FormatInt(req.ClientID, 10),
	}
	view, err := commands.Dispatch[storefront.StartSessionCommand, *dto.SessionView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if req.ReferralCode != "" {
		h.registerReferral(c, req)
	}
	token, expires, err := h.Tokens.Issue(security.Principal{
		SessionID: cmd.SessionID,
		ClientID:  cmd.ClientID,
		Name:      req.Name,
		Username:  req.Username,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SessionToken{
		SessionID: cmd.SessionID,
		Token:     token,
		ExpiresAt: expires,
		Session:   *view,
	})
}

// registerReferral credits the inviting worker. The session starts whether or
// not the code is accepted.
func (h SessionHandler) registerReferral(c *gin.Context, req startSessionRequest) {
	_, err := commands.Dispatch[backoffice.RegisterReferralCommand, *dto.ReferralRegistration](c.Request.Context(), h.Commands, backoffice.RegisterReferralCommand{
		Code:       req.ReferralCode,
		TelegramID: req.ClientID,
		Username:   req.Username,
		FirstName:  req.Name,
	})
	if err != nil && h.Logger != nil {
		h.Logger.InfoContext(c.Request.Context(), "referral not registered", "code", req.ReferralCode, "client_id", req.ClientID, "error", err)
	}
}

func (h SessionHandler) Get(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	view, err := queries.Ask[catalogapp.GetSessionQuery, *dto.SessionView](c.Request.Context(), h.Queries, catalogapp.GetSessionQuery{SessionID: p.SessionID})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// dispatch runs the command built for the caller's session and writes the
// resulting view.
func (h SessionHandler) dispatch(c *gin.Context, build func(sessionID string) (commands.Command, error)) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	cmd, err := build(p.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := commands.Dispatch[commands.Command, *dto.SessionView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h SessionHandler) Navigate(c *gin.Context) {
	var req struct {
		View string `json:"view"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.NavigateCommand{SessionID: id, View: req.View}, nil
	})
}

func (h SessionHandler) Back(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		return storefront.BackCommand{SessionID: id}, nil
	})
}

func (h SessionHandler) Home(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		return storefront.ReturnHomeCommand{SessionID: id}, nil
	})
}

func (h SessionHandler) SelectProfile(c *gin.Context) {
	var req struct {
		ProfileID string `json:"profile_id"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.SelectProfileCommand{SessionID: id, ProfileID: req.ProfileID}, nil
	})
}

func (h SessionHandler) SetImage(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.SetImageCommand{SessionID: id, Index: req.Index}, nil
	})
}

func (h SessionHandler) ConfirmAge(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		return storefront.ConfirmAgeCommand{SessionID: id}, nil
	})
}

func (h SessionHandler) SetSearch(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.SetSearchCommand{SessionID: id, Text: req.Text}, nil
	})
}

func (h SessionHandler) ApplyFilters(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		filters := catalog.DefaultFilters()
		if err := c.ShouldBindJSON(&filters); err != nil {
			return nil, err
		}
		return storefront.ApplyFiltersCommand{SessionID: id, Filters: filters}, nil
	})
}

func (h SessionHandler) ResetFilters(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		return storefront.ResetFiltersCommand{SessionID: id}, nil
	})
}

func (h SessionHandler) StartBooking(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		return storefront.StartBookingCommand{SessionID: id}, nil
	})
}

func (h SessionHandler) ToggleService(c *gin.Context) {
	var req struct {
		Service string `json:"service"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.ToggleServiceCommand{SessionID: id, Service: req.Service}, nil
	})
}

func (h SessionHandler) SetDuration(c *gin.Context) {
	var req struct {
		Duration string `json:"duration"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.SetDurationCommand{SessionID: id, Duration: req.Duration}, nil
	})
}

func (h SessionHandler) SetDate(c *gin.Context) {
	var req struct {
		Date string `json:"date"`
	}
	h.dispatch(c, func(id string) (commands.Command, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return storefront.SetDateCommand{SessionID: id, Date: req.Date}, nil
	})
}

func (h SessionHandler) SubmitBooking(c *gin.Context) {
	h.dispatch(c, func(id string) (commands.Command, error) {
		return storefront.SubmitBookingCommand{SessionID: id}, nil
	})
}

var _ SessionHTTP = SessionHandler{}
