package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/shared/money"
)

var ErrUnknownDuration = errors.New("pricing: unknown duration")

// Duration is the booked time tier.
type Duration string

const (
	OneHour   Duration = "1 hour"
	TwoHours  Duration = "2 hours"
	Overnight Duration = "overnight"
)

const (
	// IncludedServices is how many selected services the base rate covers.
	IncludedServices = 3
	// SurchargePercent is added per selected service beyond the included ones.
	SurchargePercent = 5
)

var durationAliases = map[string]Duration{
	"1 hour":    OneHour,
	"1h":        OneHour,
	"1 час":     OneHour,
	"2 hours":   TwoHours,
	"2h":        TwoHours,
	"2 часа":    TwoHours,
	"overnight": Overnight,
	"night":     Overnight,
	"ночь":      Overnight,
}

// Durations lists the tiers in display order.
func Durations() []Duration {
	return []Duration{OneHour, TwoHours, Overnight}
}

// ParseDuration maps a label (including the legacy Russian ones) to a tier.
func ParseDuration(raw string) (Duration, error) {
	d, ok := durationAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrUnknownDuration
	}
	return d, nil
}

func (d Duration) Valid() bool {
	switch d {
	case OneHour, TwoHours, Overnight:
		return true
	}
	return false
}

// Multiplier returns the rate multiplier of the tier. Unknown tiers bill as one hour.
func (d Duration) Multiplier() int64 {
	switch d {
	case TwoHours:
		return 2
	case Overnight:
		return 5
	default:
		return 1
	}
}

// ComputeTotal prices a booking. The result is rounded half away from zero
// and never negative.
func ComputeTotal(base int64, selected []string, d Duration) int64 {
	if base < 0 {
		base = 0
	}
	extra := int64(len(distinct(selected)) - IncludedServices)
	if extra < 0 {
		extra = 0
	}
	adjusted := decimal.NewFromInt(base).Mul(decimal.NewFromInt(d.Multiplier()))
	if extra == 0 {
		return adjusted.IntPart()
	}
	factor := decimal.NewFromInt(100 + SurchargePercent*extra).Div(decimal.NewFromInt(100))
	return adjusted.Mul(factor).Round(0).IntPart()
}

// Breakdown explains a computed total.
type Breakdown struct {
	Base             money.Money `json:"base"`
	Duration         Duration    `json:"duration"`
	Multiplier       int64       `json:"multiplier"`
	Included         []string    `json:"included"`
	Extra            []string    `json:"extra"`
	SurchargePercent int64       `json:"surcharge_percent"`
	Total            money.Money `json:"total"`
}

// Quote prices the selection and splits it into included and surcharged
// services following the profile's declared service order.
func Quote(declared []string, base int64, selected []string, d Duration) Breakdown {
	picked := distinct(selected)
	ordered := orderBy(declared, picked)

	split := IncludedServices
	if split > len(ordered) {
		split = len(ordered)
	}
	extra := ordered[split:]

	if base < 0 {
		base = 0
	}
	return Breakdown{
		Base:             money.RUB(base),
		Duration:         d,
		Multiplier:       d.Multiplier(),
		Included:         append([]string{}, ordered[:split]...),
		Extra:            append([]string{}, extra...),
		SurchargePercent: int64(len(extra)) * SurchargePercent,
		Total:            money.RUB(ComputeTotal(base, picked, d)),
	}
}

// distinct drops blanks and repeats, keeping first occurrences.
func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// orderBy sorts picked by position in declared; names not declared go last
// in selection order.
func orderBy(declared, picked []string) []string {
	want := make(map[string]struct{}, len(picked))
	for _, s := range picked {
		want[s] = struct{}{}
	}
	out := make([]string, 0, len(picked))
	for _, s := range declared {
		if _, ok := want[s]; ok {
			out = append(out, s)
			delete(want, s)
		}
	}
	for _, s := range picked {
		if _, ok := want[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
