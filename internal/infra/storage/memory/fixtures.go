package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
)

// FixtureSource serves the catalog from a JSON file. A missing file is an
// empty catalog, not an error.
type FixtureSource struct {
	Path string
}

type fixtureFile struct {
	Profiles []profileFixture `json:"profiles"`
	Settings struct {
		SupportContact     string `json:"support_contact"`
		PaymentDestination string `json:"payment_destination"`
	} `json:"settings"`
	Workers []workerFixture `json:"workers"`
}

type workerFixture struct {
	ReferralCode string `json:"referral_code"`
	Name         string `json:"name"`
	TelegramID   int64  `json:"telegram_id"`
}

type profileFixture struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Age         int              `json:"age"`
	City        string           `json:"city"`
	Height      int              `json:"height"`
	Weight      int              `json:"weight"`
	Bust        int              `json:"bust"`
	Price       int64            `json:"price"`
	Description string           `json:"description"`
	Services    []string         `json:"services"`
	Images      []string         `json:"images"`
	IsTop       bool             `json:"is_top"`
	IsVerified  bool             `json:"is_verified"`
	Reviews     []catalog.Review `json:"reviews"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (s FixtureSource) read() (fixtureFile, error) {
	var file fixtureFile
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return file, fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		return file, nil
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("decode fixtures: %w", err)
	}
	return file, nil
}

func (s FixtureSource) LoadProfiles(ctx context.Context) ([]catalog.Profile, error) {
	file, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Profile, 0, len(file.Profiles))
	for _, fx := range file.Profiles {
		out = append(out, catalog.Profile{
			ID:          catalog.ProfileID(fx.ID),
			Name:        fx.Name,
			Age:         fx.Age,
			City:        fx.City,
			Height:      fx.Height,
			Weight:      fx.Weight,
			Bust:        fx.Bust,
			Price:       fx.Price,
			Description: fx.Description,
			Services:    append([]string(nil), fx.Services...),
			Images:      append([]string(nil), fx.Images...),
			IsTop:       fx.IsTop,
			IsVerified:  fx.IsVerified,
			Reviews:     append([]catalog.Review(nil), fx.Reviews...),
			CreatedAt:   fx.CreatedAt,
		})
	}
	return out, nil
}

func (s FixtureSource) LoadSiteSettings(ctx context.Context) (catalog.SiteSettings, error) {
	file, err := s.read()
	if err != nil {
		return catalog.SiteSettings{}, err
	}
	return catalog.SiteSettings{
		SupportContact:     file.Settings.SupportContact,
		PaymentDestination: file.Settings.PaymentDestination,
	}, nil
}

// LoadWorkers returns the workers keyed by referral code.
func (s FixtureSource) LoadWorkers() (map[string]order.Referrer, error) {
	file, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]order.Referrer, len(file.Workers))
	for _, w := range file.Workers {
		if w.ReferralCode == "" {
			continue
		}
		out[w.ReferralCode] = order.Referrer{Name: w.Name, TelegramID: w.TelegramID}
	}
	return out, nil
}

var _ catalog.Source = FixtureSource{}
