package dto

import (
	"time"

	"storefront/internal/domain/catalog"
)

// ProfileCard is the catalog grid representation of a profile.
type ProfileCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	City       string `json:"city"`
	Price      int64  `json:"price"`
	Cover      string `json:"cover"`
	IsTop      bool   `json:"is_top"`
	IsVerified bool   `json:"is_verified"`
	Favorite   bool   `json:"favorite"`
}

type Review struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	Date   string `json:"date"`
}

// ProfileDetail is the full profile page.
type ProfileDetail struct {
	ProfileCard
	Height      int       `json:"height"`
	Weight      int       `json:"weight"`
	Bust        int       `json:"bust"`
	Description string    `json:"description"`
	Services    []string  `json:"services"`
	Images      []string  `json:"images"`
	Reviews     []Review  `json:"reviews"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

type Catalog struct {
	Items   []ProfileCard       `json:"items"`
	Search  string              `json:"search"`
	Filters catalog.FilterState `json:"filters"`
	Meta    CatalogMeta         `json:"meta"`
}

type CatalogMeta struct {
	Total    int       `json:"total"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
}

type Settings struct {
	SupportContact     string `json:"support_contact"`
	PaymentDestination string `json:"payment_destination"`
}

type ReferralRegistration struct {
	Code         string    `json:"code"`
	ClientID     int64     `json:"client_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Share struct {
	ProfileID string `json:"profile_id"`
	URL       string `json:"url"`
	Text      string `json:"text"`
}

// FavoriteSet tells MapCard which ids are favorites; nil means none.
type FavoriteSet interface {
	Contains(id catalog.ProfileID) bool
}

func MapCard(p catalog.Profile, favs FavoriteSet) ProfileCard {
	return ProfileCard{
		ID:         string(p.ID),
		Name:       p.Name,
		Age:        p.Age,
		City:       p.City,
		Price:      p.Price,
		Cover:      p.Cover(),
		IsTop:      p.IsTop,
		IsVerified: p.IsVerified,
		Favorite:   favs != nil && favs.Contains(p.ID),
	}
}

func MapCards(ps []catalog.Profile, favs FavoriteSet) []ProfileCard {
	out := make([]ProfileCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, MapCard(p, favs))
	}
	return out
}

func MapDetail(p catalog.Profile, favs FavoriteSet) ProfileDetail {
	reviews := make([]Review, 0, len(p.Reviews))
	var sum int
	for _, r := range p.Reviews {
		reviews = append(reviews, Review{Author: r.Author, Text: r.Text, Rating: r.Rating, Date: r.Date})
		sum += r.Rating
	}
	var rating float64
	if len(reviews) > 0 {
		rating = float64(sum) / float64(len(reviews))
	}
	return ProfileDetail{
		ProfileCard: MapCard(p, favs),
		Height:      p.Height,
		Weight:      p.Weight,
		Bust:        p.Bust,
		Description: p.Description,
		Services:    append([]string{}, p.Services...),
		Images:      append([]string{}, p.Images...),
		Reviews:     reviews,
		Rating:      rating,
		CreatedAt:   p.CreatedAt,
	}
}

func MapSettings(s catalog.SiteSettings) Settings {
	return Settings{SupportContact: s.SupportContact, PaymentDestination: s.PaymentDestination}
}
