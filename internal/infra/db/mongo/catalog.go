package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/domain/catalog"
)

// CatalogSource reads active profiles and the site settings document.
type CatalogSource struct {
	profiles *mongo.Collection
	settings *mongo.Collection
}

func NewCatalogSource(db *mongo.Database) *CatalogSource {
	return &CatalogSource{
		profiles: db.Collection("profiles"),
		settings: db.Collection("site_settings"),
	}
}

type profileDocument struct {
	ID          string           `bson:"_id"`
	Name        string           `bson:"name"`
	Age         int              `bson:"age"`
	City        string           `bson:"city"`
	Height      int              `bson:"height"`
	Weight      int              `bson:"weight"`
	Bust        int              `bson:"bust"`
	Price       int64            `bson:"price"`
	Description string           `bson:"description"`
	Services    []string         `bson:"services"`
	Images      []string         `bson:"images"`
	IsTop       bool             `bson:"is_top"`
	IsVerified  bool             `bson:"is_verified"`
	IsActive    bool             `bson:"is_active"`
	Reviews     []catalog.Review `bson:"reviews"`
	CreatedAt   time.Time        `bson:"created_at"`
}

func (d profileDocument) toDomain() catalog.Profile {
	return catalog.Profile{
		ID:          catalog.ProfileID(d.ID),
		Name:        d.Name,
		Age:         d.Age,
		City:        d.City,
		Height:      d.Height,
		Weight:      d.Weight,
		Bust:        d.Bust,
		Price:       d.Price,
		Description: d.Description,
		Services:    d.Services,
		Images:      d.Images,
		IsTop:       d.IsTop,
		IsVerified:  d.IsVerified,
		Reviews:     d.Reviews,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *CatalogSource) LoadProfiles(ctx context.Context) ([]catalog.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.profiles.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []catalog.Profile
	for cur.Next(ctx) {
		var doc profileDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

type settingsDocument struct {
	SupportContact     string `bson:"support_contact"`
	PaymentDestination string `bson:"payment_destination"`
}

// LoadSiteSettings reads the single settings document. Its absence is not an
// error; the loader fills defaults.
func (s *CatalogSource) LoadSiteSettings(ctx context.Context) (catalog.SiteSettings, error) {
	var doc settingsDocument
	if err := s.settings.FindOne(ctx, bson.M{}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.SiteSettings{}, nil
		}
		return catalog.SiteSettings{}, err
	}
	return catalog.SiteSettings{
		SupportContact:     doc.SupportContact,
		PaymentDestination: doc.PaymentDestination,
	}, nil
}

// settingsUpdate sets only the non-blank fields.
func settingsUpdate(s catalog.SiteSettings) bson.M {
	set := bson.M{}
	if s.SupportContact != "" {
		set["support_contact"] = s.SupportContact
	}
	if s.PaymentDestination != "" {
		set["payment_destination"] = s.PaymentDestination
	}
	return bson.M{"$set": set}
}

// SaveSiteSettings updates the settings document, creating it when missing.
func (s *CatalogSource) SaveSiteSettings(ctx context.Context, settings catalog.SiteSettings) error {
	_, err := s.settings.UpdateOne(ctx, bson.M{}, settingsUpdate(settings), options.Update().SetUpsert(true))
	return err
}

var (
	_ catalog.Source         = (*CatalogSource)(nil)
	_ catalog.SettingsWriter = (*CatalogSource)(nil)
)
