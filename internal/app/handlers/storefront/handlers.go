package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/support"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/session"
)

var ErrAgeNotConfirmed = errors.New("storefront: age confirmation required")

// Handlers runs the session transitions behind the storefront commands.
type Handlers struct {
	Sessions *support.Sessions
}

func (h *Handlers) StartSession(ctx context.Context, cmd StartSessionCommand) (*dto.SessionView, error) {
	s, err := session.New(cmd.SessionID, cmd.ClientID, h.Sessions.Now())
	if err != nil {
		return nil, err
	}
	if err := h.Sessions.Repo.Create(ctx, s); err != nil {
		return nil, err
	}
	view := h.Sessions.Settle(ctx, s)
	return &view, nil
}

func (h *Handlers) Navigate(ctx context.Context, cmd NavigateCommand) (*dto.SessionView, error) {
	target, err := session.ParseView(cmd.View)
	if err != nil {
		return nil, err
	}
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.Navigate(target, now)
	})
}

func (h *Handlers) Back(ctx context.Context, cmd BackCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.Back(now)
	})
}

func (h *Handlers) ReturnHome(ctx context.Context, cmd ReturnHomeCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.ReturnHome(now)
	})
}

func (h *Handlers) SelectProfile(ctx context.Context, cmd SelectProfileCommand) (*dto.SessionView, error) {
	p, err := h.Sessions.Profile(catalog.ProfileID(cmd.ProfileID))
	if err != nil {
		return nil, err
	}
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.SelectProfile(p, now)
	})
}

func (h *Handlers) SetImage(ctx context.Context, cmd SetImageCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		count := 0
		if p, err := h.Sessions.Profile(s.SelectedProfileID()); err == nil {
			count = len(p.Images)
		}
		return s.SetImageIndex(cmd.Index, count, now)
	})
}

func (h *Handlers) ConfirmAge(ctx context.Context, cmd ConfirmAgeCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		s.ConfirmAge(now)
		return nil
	})
}

func (h *Handlers) SetSearch(ctx context.Context, cmd SetSearchCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		s.SetSearch(cmd.Text, now)
		return nil
	})
}

func (h *Handlers) ApplyFilters(ctx context.Context, cmd ApplyFiltersCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		s.ApplyFilters(cmd.Filters, now)
		return nil
	})
}

func (h *Handlers) ResetFilters(ctx context.Context, cmd ResetFiltersCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		s.ResetFilters(now)
		return nil
	})
}

func (h *Handlers) StartBooking(ctx context.Context, cmd StartBookingCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.StartBooking(now)
	})
}

func (h *Handlers) ToggleService(ctx context.Context, cmd ToggleServiceCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		_, err := s.ToggleService(cmd.Service, now)
		return err
	})
}

func (h *Handlers) SetDuration(ctx context.Context, cmd SetDurationCommand) (*dto.SessionView, error) {
	d, err := pricing.ParseDuration(cmd.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cmd.Duration)
	}
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.SetDuration(d, now)
	})
}

func (h *Handlers) SetDate(ctx context.Context, cmd SetDateCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.SetDate(cmd.Date, now)
	})
}

func (h *Handlers) SubmitBooking(ctx context.Context, cmd SubmitBookingCommand) (*dto.SessionView, error) {
	return h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.SubmitBooking(now)
	})
}

// AgeGate refuses age-restricted commands until the session confirmed 18+.
type AgeGate struct {
	Sessions session.Repository
}

func (g AgeGate) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(AgeRestricted)
	if !ok {
		return nil
	}
	s, err := g.Sessions.Get(ctx, restricted.SessionRef())
	if err != nil {
		return err
	}
	if !s.AgeConfirmed() {
		return ErrAgeNotConfirmed
	}
	return nil
}

// Register binds every storefront command to bus.
func (h *Handlers) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, startSessionKey, commands.HandlerFunc[StartSessionCommand, *dto.SessionView](h.StartSession))
	commands.RegisterHandler(bus, navigateKey, commands.HandlerFunc[NavigateCommand, *dto.SessionView](h.Navigate))
	commands.RegisterHandler(bus, backKey, commands.HandlerFunc[BackCommand, *dto.SessionView](h.Back))
	commands.RegisterHandler(bus, returnHomeKey, commands.HandlerFunc[ReturnHomeCommand, *dto.SessionView](h.ReturnHome))
	commands.RegisterHandler(bus, selectProfileKey, commands.HandlerFunc[SelectProfileCommand, *dto.SessionView](h.SelectProfile))
	commands.RegisterHandler(bus, setImageKey, commands.HandlerFunc[SetImageCommand, *dto.SessionView](h.SetImage))
	commands.RegisterHandler(bus, confirmAgeKey, commands.HandlerFunc[ConfirmAgeCommand, *dto.SessionView](h.ConfirmAge))
	commands.RegisterHandler(bus, setSearchKey, commands.HandlerFunc[SetSearchCommand, *dto.SessionView](h.SetSearch))
	commands.RegisterHandler(bus, applyFiltersKey, commands.HandlerFunc[ApplyFiltersCommand, *dto.SessionView](h.ApplyFilters))
	commands.RegisterHandler(bus, resetFiltersKey, commands.HandlerFunc[ResetFiltersCommand, *dto.SessionView](h.ResetFilters))
	commands.RegisterHandler(bus, startBookingKey, commands.HandlerFunc[StartBookingCommand, *dto.SessionView](h.StartBooking))
	commands.RegisterHandler(bus, toggleServiceKey, commands.HandlerFunc[ToggleServiceCommand, *dto.SessionView](h.ToggleService))
	commands.RegisterHandler(bus, setDurationKey, commands.HandlerFunc[SetDurationCommand, *dto.SessionView](h.SetDuration))
	commands.RegisterHandler(bus, setDateKey, commands.HandlerFunc[SetDateCommand, *dto.SessionView](h.SetDate))
	commands.RegisterHandler(bus, submitBookingKey, commands.HandlerFunc[SubmitBookingCommand, *dto.SessionView](h.SubmitBooking))
}
