package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrProfileNotFound = errors.New("catalog: profile not found")
	ErrIDRequired      = errors.New("catalog: profile id is required")
	ErrNameRequired    = errors.New("catalog: profile name is required")
	ErrNegativePrice   = errors.New("catalog: price must be non-negative")
	ErrImagesRequired  = errors.New("catalog: profile needs at least one image")
	ErrReviewRating    = errors.New("catalog: review rating must be between 1 and 5")
)

type ProfileID string

type Review struct {
	ID     string `json:"id" bson:"id"`
	Author string `json:"author" bson:"author"`
	Text   string `json:"text" bson:"text"`
	Rating int    `json:"rating" bson:"rating"`
	Date   string `json:"date" bson:"date"`
}

// Profile is a catalog entry. Profiles are loaded wholesale and never mutated.
type Profile struct {
	ID          ProfileID
	Name        string
	Age         int
	City        string
	Height      int
	Weight      int
	Bust        int
	Price       int64
	Description string
	Services    []string
	Images      []string
	IsTop       bool
	IsVerified  bool
	Reviews     []Review
	CreatedAt   time.Time
}

// Validate checks the invariants a profile must hold to enter the catalog.
func (p Profile) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if len(p.Images) == 0 {
		return ErrImagesRequired
	}
	for _, r := range p.Reviews {
		if r.Rating < 1 || r.Rating > 5 {
			return ErrReviewRating
		}
	}
	return nil
}

// Offers reports whether the profile declares the given service.
func (p Profile) Offers(service string) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

func (p Profile) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Featured profiles are shown in the stories strip.
func (p Profile) Featured() bool {
	return p.IsTop || p.IsVerified
}

func (p Profile) clone() Profile {
	c := p
	c.Services = append([]string(nil), p.Services...)
	c.Images = append([]string(nil), p.Images...)
	c.Reviews = append([]Review(nil), p.Reviews...)
	return c
}

// SiteSettings carries storefront-wide contact details.
type SiteSettings struct {
	SupportContact     string
	PaymentDestination string
}

const (
	DefaultSupportContact     = "@OneNightSupport"
	DefaultPaymentDestination = "2202 2026 8321 4532"
)

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SupportContact:     DefaultSupportContact,
		PaymentDestination: DefaultPaymentDestination,
	}
}

// WithDefaults fills blank fields from fallback.
func (s SiteSettings) WithDefaults(fallback SiteSettings) SiteSettings {
	if strings.TrimSpace(s.SupportContact) == "" {
		s.SupportContact = fallback.SupportContact
	}
	if strings.TrimSpace(s.PaymentDestination) == "" {
		s.PaymentDestination = fallback.PaymentDestination
	}
	return s
}

// Source is the hosted data backend the catalog is read from.
type Source interface {
	// LoadProfiles returns active profiles, newest first.
	LoadProfiles(ctx context.Context) ([]Profile, error)
	LoadSiteSettings(ctx context.Context) (SiteSettings, error)
}

// Reader exposes the currently loaded catalog snapshot.
type Reader interface {
	Current() *Catalog
}

// ShareText is the message copied when a profile is shared.
func ShareText(p Profile, link string) string {
	return "Check out " + p.Name + " on OneNight: " + link
}
