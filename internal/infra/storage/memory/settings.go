package memory

import (
	"context"
	"sync"

	"storefront/internal/domain/catalog"
)

// SettingsOverlay keeps operator edits in front of a read-only catalog
// source, such as the JSON fixtures.
type SettingsOverlay struct {
	catalog.Source

	mu    sync.RWMutex
	saved catalog.SiteSettings
}

func NewSettingsOverlay(src catalog.Source) *SettingsOverlay {
	return &SettingsOverlay{Source: src}
}

func (o *SettingsOverlay) LoadSiteSettings(ctx context.Context) (catalog.SiteSettings, error) {
	base, err := o.Source.LoadSiteSettings(ctx)
	if err != nil {
		return base, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.saved.WithDefaults(base), nil
}

func (o *SettingsOverlay) SaveSiteSettings(ctx context.Context, s catalog.SiteSettings) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saved = s.WithDefaults(o.saved)
	return nil
}

var (
	_ catalog.Source         = (*SettingsOverlay)(nil)
	_ catalog.SettingsWriter = (*SettingsOverlay)(nil)
)
