// Package backoffice holds the operator-side commands: editing the site
// settings and crediting workers for the clients their invite links bring.
package backoffice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/referral"
)

const (
	updateSettingsKey   = "backoffice.settings.update"
	registerReferralKey = "backoffice.referral.register"
)

var ErrNotAdmin = errors.New("backoffice: administrator rights required")

// AdminOnly marks commands only administrators may run.
type AdminOnly interface {
	ActorID() int64
}

type UpdateSiteSettingsCommand struct {
	AdminID            int64  `validate:"required,gt=0"`
	SupportContact     string `validate:"max=64"`
	PaymentDestination string `validate:"max=32"`
}

func (UpdateSiteSettingsCommand) Key() string      { return updateSettingsKey }
func (c UpdateSiteSettingsCommand) ActorID() int64 { return c.AdminID }

// RegisterReferralCommand is sent when a client opens the storefront through
// a worker's invite link.
type RegisterReferralCommand struct {
	Code       string `validate:"required,max=64"`
	TelegramID int64  `validate:"required,gt=0"`
	Username   string `validate:"max=64"`
	FirstName  string `validate:"max=128"`
	LastName   string `validate:"max=128"`
}

func (RegisterReferralCommand) Key() string { return registerReferralKey }

// SnapshotStore is the live catalog the storefront reads from.
type SnapshotStore interface {
	catalog.Reader
	Swap(c *catalog.Catalog)
}

type Handlers struct {
	Settings  catalog.SettingsWriter
	Store     SnapshotStore
	Referrals referral.Registry
	Logger    *slog.Logger
	Clock     func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// UpdateSiteSettings stores the edited fields and applies them to the live
// catalog without waiting for the next reload.
func (h *Handlers) UpdateSiteSettings(ctx context.Context, cmd UpdateSiteSettingsCommand) (*dto.Settings, error) {
	edit, err := catalog.SiteSettings{
		SupportContact:     cmd.SupportContact,
		PaymentDestination: cmd.PaymentDestination,
	}.Normalize()
	if err != nil {
		return nil, err
	}
	if err := h.Settings.SaveSiteSettings(ctx, edit); err != nil {
		return nil, err
	}
	current := h.Store.Current()
	next := edit.WithDefaults(current.Settings())
	h.Store.Swap(current.WithSettings(next))
	h.logger().InfoContext(ctx, "site settings updated",
		"admin_id", cmd.AdminID,
		"support_contact", edit.SupportContact != "",
		"payment_destination", edit.PaymentDestination != "",
	)
	settings := dto.MapSettings(next)
	return &settings, nil
}

func (h *Handlers) RegisterReferral(ctx context.Context, cmd RegisterReferralCommand) (*dto.ReferralRegistration, error) {
	reg, err := referral.NewRegistration(cmd.Code, referral.Client{
		TelegramID: cmd.TelegramID,
		Username:   cmd.Username,
		FirstName:  cmd.FirstName,
		LastName:   cmd.LastName,
	}, h.now())
	if err != nil {
		return nil, err
	}
	if err := h.Referrals.Register(ctx, reg); err != nil {
		return nil, err
	}
	h.logger().InfoContext(ctx, "referral registered", "code", reg.Code, "client_id", reg.Client.TelegramID)
	return &dto.ReferralRegistration{Code: reg.Code, ClientID: reg.Client.TelegramID, RegisteredAt: reg.At}, nil
}

// AdminGate lets AdminOnly commands through for the configured administrators.
type AdminGate struct {
	admins map[int64]struct{}
}

func NewAdminGate(ids []int64) AdminGate {
	admins := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return AdminGate{admins: admins}
}

func (g AdminGate) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(AdminOnly)
	if !ok {
		return nil
	}
	if _, ok := g.admins[restricted.ActorID()]; !ok {
		return ErrNotAdmin
	}
	return nil
}

func (h *Handlers) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, updateSettingsKey, commands.HandlerFunc[UpdateSiteSettingsCommand, *dto.Settings](h.UpdateSiteSettings))
	commands.RegisterHandler(bus, registerReferralKey, commands.HandlerFunc[RegisterReferralCommand, *dto.ReferralRegistration](h.RegisterReferral))
}
