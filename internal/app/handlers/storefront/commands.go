package storefront

import "storefront/internal/domain/catalog"

const (
	startSessionKey  = "storefront.session.start"
	navigateKey      = "storefront.navigate"
	backKey          = "storefront.back"
	returnHomeKey    = "storefront.home"
	selectProfileKey = "storefront.profile.select"
	setImageKey      = "storefront.profile.image"
	confirmAgeKey    = "storefront.age.confirm"
	setSearchKey     = "storefront.search.set"
	applyFiltersKey  = "storefront.filters.apply"
	resetFiltersKey  = "storefront.filters.reset"
	startBookingKey  = "storefront.booking.start"
	toggleServiceKey = "storefront.booking.service"
	setDurationKey   = "storefront.booking.duration"
	setDateKey       = "storefront.booking.date"
	submitBookingKey = "storefront.booking.submit"
)

// AgeRestricted marks commands that need the 18+ confirmation first.
type AgeRestricted interface {
	SessionRef() string
	AgeRestricted()
}

type StartSessionCommand struct {
	SessionID string `validate:"required"`
	ClientID  string `validate:"required,number"`
}

func (StartSessionCommand) Key() string { return startSessionKey }

type NavigateCommand struct {
	SessionID string `validate:"required"`
	View      string `validate:"required,oneof=HOME FAVORITES MORE home favorites more"`
}

func (NavigateCommand) Key() string { return navigateKey }

type BackCommand struct {
	SessionID string `validate:"required"`
}

func (BackCommand) Key() string { return backKey }

type ReturnHomeCommand struct {
	SessionID string `validate:"required"`
}

func (ReturnHomeCommand) Key() string { return returnHomeKey }

type SelectProfileCommand struct {
	SessionID string `validate:"required"`
	ProfileID string `validate:"required"`
}

func (SelectProfileCommand) Key() string          { return selectProfileKey }
func (c SelectProfileCommand) SessionRef() string { return c.SessionID }
func (SelectProfileCommand) AgeRestricted()       {}

type SetImageCommand struct {
	SessionID string `validate:"required"`
	Index     int    `validate:"gte=0"`
}

func (SetImageCommand) Key() string { return setImageKey }

type ConfirmAgeCommand struct {
	SessionID string `validate:"required"`
}

func (ConfirmAgeCommand) Key() string { return confirmAgeKey }

type SetSearchCommand struct {
	SessionID string `validate:"required"`
	Text      string `validate:"max=100"`
}

func (SetSearchCommand) Key() string { return setSearchKey }

type ApplyFiltersCommand struct {
	SessionID string `validate:"required"`
	Filters   catalog.FilterState
}

func (ApplyFiltersCommand) Key() string { return applyFiltersKey }

type ResetFiltersCommand struct {
	SessionID string `validate:"required"`
}

func (ResetFiltersCommand) Key() string { return resetFiltersKey }

type StartBookingCommand struct {
	SessionID string `validate:"required"`
}

func (StartBookingCommand) Key() string          { return startBookingKey }
func (c StartBookingCommand) SessionRef() string { return c.SessionID }
func (StartBookingCommand) AgeRestricted()       {}

type ToggleServiceCommand struct {
	SessionID string `validate:"required"`
	Service   string `validate:"required,max=100"`
}

func (ToggleServiceCommand) Key() string { return toggleServiceKey }

type SetDurationCommand struct {
	SessionID string `validate:"required"`
	Duration  string `validate:"required"`
}

func (SetDurationCommand) Key() string { return setDurationKey }

type SetDateCommand struct {
	SessionID string `validate:"required"`
	Date      string `validate:"required,max=100"`
}

func (SetDateCommand) Key() string { return setDateKey }

type SubmitBookingCommand struct {
	SessionID string `validate:"required"`
}

func (SubmitBookingCommand) Key() string          { return submitBookingKey }
func (c SubmitBookingCommand) SessionRef() string { return c.SessionID }
func (SubmitBookingCommand) AgeRestricted()       {}
