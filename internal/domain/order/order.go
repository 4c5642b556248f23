package order

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
)

var (
	ErrIDRequired       = errors.New("order: id is required")
	ErrProfileRequired  = errors.New("order: profile is required")
	ErrClientRequired   = errors.New("order: client id is required")
	ErrServicesRequired = errors.New("order: at least one service is required")
)

type Status string

const (
	StatusPending Status = "pending"

	PaymentMethodCard = "card"
)

// Referrer is the party credited for bringing the client. Both fields are
// optional.
type Referrer struct {
	Name       string `json:"name,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
}

func (r Referrer) Known() bool {
	return r.Name != "" || r.TelegramID != 0
}

// Order is the payload handed to the notification gateway and recorded after
// a successful delivery.
type Order struct {
	ID             string            `json:"id"`
	ProfileID      catalog.ProfileID `json:"profile_id"`
	ProfileName    string            `json:"profile_name"`
	ClientID       int64             `json:"client_id"`
	ClientName     string            `json:"client_name"`
	ClientUsername string            `json:"client_username,omitempty"`
	Services       []string          `json:"services"`
	Duration       pricing.Duration  `json:"duration"`
	TotalPrice     int64             `json:"total_price"`
	BookingDate    string            `json:"booking_date"`
	Referrer       Referrer          `json:"referrer"`
	ProofURL       string            `json:"proof_url,omitempty"`
	Status         Status            `json:"status"`
	PaymentMethod  string            `json:"payment_method"`
	CreatedAt      time.Time         `json:"created_at"`
}

type Params struct {
	ID             string
	Profile        catalog.Profile
	ClientID       int64
	ClientName     string
	ClientUsername string
	Services       []string
	Duration       pricing.Duration
	BookingDate    string
	Referrer       Referrer
	ProofURL       string
	Now            time.Time
}

// Build prices the booking against the profile and assembles the order.
func Build(p Params) (Order, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Order{}, ErrIDRequired
	}
	if p.Profile.ID == "" {
		return Order{}, ErrProfileRequired
	}
	if p.ClientID == 0 {
		return Order{}, ErrClientRequired
	}
	if len(p.Services) == 0 {
		return Order{}, ErrServicesRequired
	}
	name := strings.TrimSpace(p.ClientName)
	if name == "" {
		name = strings.TrimSpace(p.ClientUsername)
	}
	return Order{
		ID:             p.ID,
		ProfileID:      p.Profile.ID,
		ProfileName:    p.Profile.Name,
		ClientID:       p.ClientID,
		ClientName:     name,
		ClientUsername: strings.TrimPrefix(strings.TrimSpace(p.ClientUsername), "@"),
		Services:       append([]string(nil), p.Services...),
		Duration:       p.Duration,
		TotalPrice:     pricing.ComputeTotal(p.Profile.Price, p.Services, p.Duration),
		BookingDate:    p.BookingDate,
		Referrer:       p.Referrer,
		ProofURL:       p.ProofURL,
		Status:         StatusPending,
		PaymentMethod:  PaymentMethodCard,
		CreatedAt:      p.Now.UTC(),
	}, nil
}

// ClientHandle is how the client is shown to operators: the username when
// known, otherwise the numeric id.
func (o Order) ClientHandle() string {
	if o.ClientUsername != "" {
		return "@" + o.ClientUsername
	}
	return "ID: " + strconv.FormatInt(o.ClientID, 10)
}
