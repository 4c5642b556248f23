package catalog

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	domaincatalog "storefront/internal/domain/catalog"
)

// Store receives each freshly built snapshot.
type Store interface {
	domaincatalog.Reader
	Swap(c *domaincatalog.Catalog)
}

// Loader reads the catalog from its source and swaps it into the store. A
// failing source never leaves the storefront without a catalog: profiles
// fall back to the previous snapshot (empty on first load) and settings to
// the previous or default values.
type Loader struct {
	Source domaincatalog.Source
	Store  Store
	Logger *slog.Logger
	Clock  func() time.Time
	// Settings fills whatever the source leaves blank, ahead of the
	// built-in defaults.
	Settings domaincatalog.SiteSettings
	// OnLoad, when set, is told the profile count and the source error of
	// each load.
	OnLoad func(profiles int, err error)
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Loader) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

// Load runs one load. The returned error is the source failure, if any; the
// store has been updated either way.
func (l *Loader) Load(ctx context.Context) error {
	var (
		profiles []domaincatalog.Profile
		settings domaincatalog.SiteSettings
		profErr  error
		setErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profiles, profErr = l.Source.LoadProfiles(gctx)
		return nil
	})
	g.Go(func() error {
		settings, setErr = l.Source.LoadSiteSettings(gctx)
		return nil
	})
	_ = g.Wait()

	previous := l.Store.Current()
	logger := l.logger()
	if profErr != nil {
		logger.ErrorContext(ctx, "catalog profiles load failed", "error", profErr)
		profiles = previous.Profiles()
	} else {
		profiles = l.valid(ctx, profiles)
	}
	fallback := l.Settings.WithDefaults(domaincatalog.DefaultSiteSettings())
	if setErr != nil {
		logger.WarnContext(ctx, "site settings load failed", "error", setErr)
		settings = previous.Settings()
	}
	settings = settings.WithDefaults(fallback)

	next := domaincatalog.NewCatalog(profiles, settings, l.now())
	l.Store.Swap(next)
	logger.InfoContext(ctx, "catalog loaded", "profiles", next.Len())

	err := profErr
	if err == nil {
		err = setErr
	}
	if l.OnLoad != nil {
		l.OnLoad(next.Len(), err)
	}
	return err
}

func (l *Loader) valid(ctx context.Context, profiles []domaincatalog.Profile) []domaincatalog.Profile {
	out := profiles[:0:0]
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			l.logger().WarnContext(ctx, "profile skipped", "profile_id", p.ID, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// Run reloads the catalog every interval until ctx is done. A non-positive
// interval disables refreshing.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = l.Load(ctx)
		}
	}
}
