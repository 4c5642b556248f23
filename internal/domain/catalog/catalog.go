package catalog

import "time"

// Catalog is an immutable snapshot of the loaded profiles and site settings.
type Catalog struct {
	profiles []Profile
	index    map[ProfileID]int
	settings SiteSettings
	loadedAt time.Time
}

// NewCatalog builds a snapshot keeping the source order. When the source
// repeats an id the first occurrence wins.
func NewCatalog(profiles []Profile, settings SiteSettings, loadedAt time.Time) *Catalog {
	c := &Catalog{
		profiles: make([]Profile, 0, len(profiles)),
		index:    make(map[ProfileID]int, len(profiles)),
		settings: settings,
		loadedAt: loadedAt.UTC(),
	}
	for _, p := range profiles {
		if _, dup := c.index[p.ID]; dup {
			continue
		}
		c.index[p.ID] = len(c.profiles)
		c.profiles = append(c.profiles, p.clone())
	}
	return c
}

// Empty returns a catalog with no profiles and default settings.
func Empty() *Catalog {
	return NewCatalog(nil, DefaultSiteSettings(), time.Time{})
}

func (c *Catalog) Profiles() []Profile {
	if c == nil {
		return nil
	}
	out := make([]Profile, len(c.profiles))
	for i, p := range c.profiles {
		out[i] = p.clone()
	}
	return out
}

func (c *Catalog) ByID(id ProfileID) (Profile, error) {
	if c == nil {
		return Profile{}, ErrProfileNotFound
	}
	i, ok := c.index[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return c.profiles[i].clone(), nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.profiles)
}

func (c *Catalog) Settings() SiteSettings {
	if c == nil {
		return DefaultSiteSettings()
	}
	return c.settings
}

func (c *Catalog) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// WithSettings returns a snapshot sharing c's profiles with settings
// replaced.
func (c *Catalog) WithSettings(s SiteSettings) *Catalog {
	if c == nil {
		c = Empty()
	}
	next := *c
	next.settings = s
	return &next
}
