package catalog

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidPaymentDestination = errors.New("catalog: payment card must have 13 to 19 digits")
	ErrSupportContactRequired    = errors.New("catalog: support contact is required")
	ErrNothingToUpdate           = errors.New("catalog: no settings to update")
)

// SettingsWriter persists operator edits to the site settings. Blank fields
// leave the stored value untouched.
type SettingsWriter interface {
	SaveSiteSettings(ctx context.Context, s SiteSettings) error
}

// NormalizePaymentDestination trims a card number typed by an operator.
// Spaces between digit groups are kept as typed.
func NormalizePaymentDestination(raw string) (string, error) {
	card := strings.TrimSpace(raw)
	digits := strings.ReplaceAll(card, " ", "")
	if len(digits) < 13 || len(digits) > 19 {
		return "", ErrInvalidPaymentDestination
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", ErrInvalidPaymentDestination
		}
	}
	return card, nil
}

// NormalizeSupportContact returns the handle with a leading @.
func NormalizeSupportContact(raw string) (string, error) {
	handle := strings.TrimSpace(raw)
	if strings.TrimLeft(handle, "@") == "" {
		return "", ErrSupportContactRequired
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle, nil
}

// Normalize validates the non-blank fields of an edit. At least one field must
// be set.
func (s SiteSettings) Normalize() (SiteSettings, error) {
	var out SiteSettings
	var err error
	if strings.TrimSpace(s.SupportContact) != "" {
		if out.SupportContact, err = NormalizeSupportContact(s.SupportContact); err != nil {
			return SiteSettings{}, err
		}
	}
	if strings.TrimSpace(s.PaymentDestination) != "" {
		if out.PaymentDestination, err = NormalizePaymentDestination(s.PaymentDestination); err != nil {
			return SiteSettings{}, err
		}
	}
	if out == (SiteSettings{}) {
		return SiteSettings{}, ErrNothingToUpdate
	}
	return out, nil
}
