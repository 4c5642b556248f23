package session

import (
	"strings"

	"storefront/internal/domain/pricing"
)

// DefaultDate is the slot a fresh draft is prefilled with.
const DefaultDate = "Today, 21:00"

// Draft is the booking being assembled for the selected profile.
type Draft struct {
	Services []string         `json:"services"`
	Duration pricing.Duration `json:"duration"`
	Date     string           `json:"date"`
}

func NewDraft() Draft {
	return Draft{Services: []string{}, Duration: pricing.OneHour, Date: DefaultDate}
}

func (d Draft) Clone() Draft {
	d.Services = append([]string{}, d.Services...)
	return d
}

func (d Draft) Has(service string) bool {
	for _, s := range d.Services {
		if s == service {
			return true
		}
	}
	return false
}

// toggle flips service in selection order and reports whether it is now selected.
func (d *Draft) toggle(service string) bool {
	if d.Has(service) {
		out := make([]string, 0, len(d.Services))
		for _, s := range d.Services {
			if s != service {
				out = append(out, s)
			}
		}
		d.Services = out
		return false
	}
	d.Services = append(d.Services, service)
	return true
}

// Total prices the draft against the profile's base rate.
func (d Draft) Total(base int64) int64 {
	return pricing.ComputeTotal(base, d.Services, d.Duration)
}

func (d Draft) Quote(declared []string, base int64) pricing.Breakdown {
	return pricing.Quote(declared, base, d.Services, d.Duration)
}

func normalizeDate(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
