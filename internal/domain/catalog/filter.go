package catalog

import "strings"

// FilterState narrows the catalog. Ranges are inclusive; an inverted range
// matches nothing.
type FilterState struct {
	City      string   `json:"city"`
	MinAge    int      `json:"min_age"`
	MaxAge    int      `json:"max_age"`
	MinHeight int      `json:"min_height"`
	MaxHeight int      `json:"max_height"`
	MinWeight int      `json:"min_weight"`
	MaxWeight int      `json:"max_weight"`
	MinBust   int      `json:"min_bust"`
	Services  []string `json:"services"`
}

const DefaultFeaturedLimit = 10

// DefaultFilters returns the wide-open filter the storefront starts with.
func DefaultFilters() FilterState {
	return FilterState{
		MinAge:    18,
		MaxAge:    60,
		MinHeight: 140,
		MaxHeight: 210,
		MinWeight: 35,
		MaxWeight: 120,
	}
}

func (f FilterState) Clone() FilterState {
	c := f
	c.Services = append([]string(nil), f.Services...)
	return c
}

// Matches reports whether p satisfies the search text and every filter clause.
func Matches(p Profile, search string, f FilterState) bool {
	if !matchesSearch(p, search) {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	if p.Age < f.MinAge || p.Age > f.MaxAge {
		return false
	}
	if p.Height < f.MinHeight || p.Height > f.MaxHeight {
		return false
	}
	if p.Weight < f.MinWeight || p.Weight > f.MaxWeight {
		return false
	}
	if f.MinBust > 0 && p.Bust < f.MinBust {
		return false
	}
	for _, s := range f.Services {
		if !p.Offers(s) {
			return false
		}
	}
	return true
}

func matchesSearch(p Profile, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.City), needle)
}

// FilterCatalog returns the matching profiles in their original order.
func FilterCatalog(profiles []Profile, search string, f FilterState) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if Matches(p, search, f) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns up to limit top or verified profiles. A non-positive limit
// falls back to DefaultFeaturedLimit.
func Featured(profiles []Profile, limit int) []Profile {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	out := make([]Profile, 0, limit)
	for _, p := range profiles {
		if len(out) == limit {
			break
		}
		if p.Featured() {
			out = append(out, p)
		}
	}
	return out
}

// Cities lists distinct non-empty cities in first-seen order.
func Cities(profiles []Profile) []string {
	seen := make(map[string]struct{}, len(profiles))
	out := make([]string, 0)
	for _, p := range profiles {
		if p.City == "" {
			continue
		}
		if _, ok := seen[p.City]; ok {
			continue
		}
		seen[p.City] = struct{}{}
		out = append(out, p.City)
	}
	return out
}
