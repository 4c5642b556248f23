package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storefront/internal/domain/catalog"
)

// CatalogSource reads the storefront tables: profiles and the single-row
// site_settings.
type CatalogSource struct {
	db *sqlx.DB
}

func NewCatalogSource(db *sqlx.DB) *CatalogSource {
	return &CatalogSource{db: db}
}

type profileRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Age         int            `db:"age"`
	City        string         `db:"city"`
	Height      int            `db:"height"`
	Weight      int            `db:"weight"`
	Bust        int            `db:"bust"`
	Price       int64          `db:"price"`
	Description string         `db:"description"`
	Services    pq.StringArray `db:"services"`
	Images      pq.StringArray `db:"images"`
	IsTop       bool           `db:"is_top"`
	IsVerified  bool           `db:"is_verified"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r profileRow) toDomain() catalog.Profile {
	return catalog.Profile{
		ID:          catalog.ProfileID(strconv.FormatInt(r.ID, 10)),
		Name:        r.Name,
		Age:         r.Age,
		City:        r.City,
		Height:      r.Height,
		Weight:      r.Weight,
		Bust:        r.Bust,
		Price:       r.Price,
		Description: r.Description,
		Services:    append([]string{}, r.Services...),
		Images:      append([]string{}, r.Images...),
		IsTop:       r.IsTop,
		IsVerified:  r.IsVerified,
		CreatedAt:   r.CreatedAt,
	}
}

const selectProfiles = `
	SELECT id, name, age, city,
	       COALESCE(height, 0) AS height,
	       COALESCE(weight, 0) AS weight,
	       COALESCE(bust, 0) AS bust,
	       price,
	       COALESCE(description, '') AS description,
	       COALESCE(services, '{}') AS services,
	       COALESCE(images, '{}') AS images,
	       COALESCE("isTop", false) AS is_top,
	       COALESCE("isVerified", false) AS is_verified,
	       created_at
	FROM profiles
	WHERE is_active = true
	ORDER BY created_at DESC
`

func (s *CatalogSource) LoadProfiles(ctx context.Context) ([]catalog.Profile, error) {
	var rows []profileRow
	if err := s.db.SelectContext(ctx, &rows, selectProfiles); err != nil {
		return nil, err
	}
	out := make([]catalog.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

type settingsRow struct {
	SupportUsername sql.NullString `db:"support_username"`
	PaymentCard     sql.NullString `db:"payment_card"`
}

func (s *CatalogSource) LoadSiteSettings(ctx context.Context) (catalog.SiteSettings, error) {
	var row settingsRow
	err := s.db.GetContext(ctx, &row, `SELECT support_username, payment_card FROM site_settings WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.SiteSettings{}, nil
		}
		return catalog.SiteSettings{}, err
	}
	return catalog.SiteSettings{
		SupportContact:     row.SupportUsername.String,
		PaymentDestination: row.PaymentCard.String,
	}, nil
}

func newSettingsRow(s catalog.SiteSettings) settingsRow {
	return settingsRow{
		SupportUsername: nullString(s.SupportContact),
		PaymentCard:     nullString(s.PaymentDestination),
	}
}

const upsertSettings = `
	INSERT INTO site_settings (id, support_username, payment_card)
	VALUES (1, :support_username, :payment_card)
	ON CONFLICT (id) DO UPDATE SET
		support_username = COALESCE(EXCLUDED.support_username, site_settings.support_username),
		payment_card = COALESCE(EXCLUDED.payment_card, site_settings.payment_card)
`

// SaveSiteSettings writes the non-blank fields into the settings row,
// creating it when missing.
func (s *CatalogSource) SaveSiteSettings(ctx context.Context, settings catalog.SiteSettings) error {
	_, err := s.db.NamedExecContext(ctx, upsertSettings, newSettingsRow(settings))
	return err
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var (
	_ catalog.Source         = (*CatalogSource)(nil)
	_ catalog.SettingsWriter = (*CatalogSource)(nil)
)
