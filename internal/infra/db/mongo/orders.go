package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/app/policies"
	"storefront/internal/domain/order"
	"storefront/internal/domain/referral"
)

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection("bookings")}
}

type orderDocument struct {
	ID             string         `bson:"_id"`
	ProfileID      string         `bson:"profile_id"`
	ProfileName    string         `bson:"profile_name"`
	ClientID       int64          `bson:"client_id"`
	ClientName     string         `bson:"client_name"`
	ClientUsername string         `bson:"client_username,omitempty"`
	Services       []string       `bson:"services"`
	Duration       string         `bson:"duration"`
	TotalPrice     int64          `bson:"total_price"`
	BookingDate    string         `bson:"booking_date"`
	Referrer       order.Referrer `bson:"referrer,omitempty"`
	ProofURL       string         `bson:"proof_url,omitempty"`
	Status         string         `bson:"status"`
	PaymentMethod  string         `bson:"payment_method"`
	CreatedAt      time.Time      `bson:"created_at"`
}

func (r *OrderRepository) Record(ctx context.Context, o order.Order) error {
	_, err := r.col.InsertOne(ctx, orderDocument{
		ID:             o.ID,
		ProfileID:      string(o.ProfileID),
		ProfileName:    o.ProfileName,
		ClientID:       o.ClientID,
		ClientName:     o.ClientName,
		ClientUsername: o.ClientUsername,
		Services:       o.Services,
		Duration:       string(o.Duration),
		TotalPrice:     o.TotalPrice,
		BookingDate:    o.BookingDate,
		Referrer:       o.Referrer,
		ProofURL:       o.ProofURL,
		Status:         string(o.Status),
		PaymentMethod:  o.PaymentMethod,
		CreatedAt:      o.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// ReferrerDirectory resolves the worker linked to a client. Worker details
// are copied into each worker_clients document when the client registers.
type ReferrerDirectory struct {
	col     *mongo.Collection
	workers *mongo.Collection
}

func NewReferrerDirectory(db *mongo.Database) *ReferrerDirectory {
	return &ReferrerDirectory{
		col:     db.Collection("worker_clients"),
		workers: db.Collection("workers"),
	}
}

// EnsureIndexes makes a client linkable to a single worker.
func (d *ReferrerDirectory) EnsureIndexes(ctx context.Context) error {
	_, err := d.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_telegram_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type referrerDocument struct {
	ClientID        int64     `bson:"client_telegram_id"`
	ClientUsername  string    `bson:"client_username,omitempty"`
	ClientFirstName string    `bson:"client_first_name,omitempty"`
	ClientLastName  string    `bson:"client_last_name,omitempty"`
	ReferralCode    string    `bson:"referral_code,omitempty"`
	Name            string    `bson:"worker_name"`
	TelegramID      int64     `bson:"worker_telegram_id"`
	CreatedAt       time.Time `bson:"created_at,omitempty"`
}

type workerDocument struct {
	TelegramID   int64  `bson:"telegram_id"`
	Username     string `bson:"username"`
	FirstName    string `bson:"first_name"`
	ReferralCode string `bson:"referral_code"`
}

func (w workerDocument) displayName() string {
	if w.FirstName != "" {
		return w.FirstName
	}
	return w.Username
}

func newReferrerDocument(w workerDocument, r referral.Registration) referrerDocument {
	return referrerDocument{
		ClientID:        r.Client.TelegramID,
		ClientUsername:  r.Client.Username,
		ClientFirstName: r.Client.FirstName,
		ClientLastName:  r.Client.LastName,
		ReferralCode:    r.Code,
		Name:            w.displayName(),
		TelegramID:      w.TelegramID,
		CreatedAt:       r.At,
	}
}

func (d *ReferrerDirectory) Register(ctx context.Context, r referral.Registration) error {
	var worker workerDocument
	if err := d.workers.FindOne(ctx, bson.M{"referral_code": r.Code}).Decode(&worker); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return referral.ErrUnknownCode
		}
		return err
	}
	_, err := d.col.InsertOne(ctx, newReferrerDocument(worker, r))
	if mongo.IsDuplicateKeyError(err) {
		return referral.ErrAlreadyReferred
	}
	return err
}

func (d *ReferrerDirectory) Referrer(ctx context.Context, clientID int64) (order.Referrer, error) {
	var doc referrerDocument
	if err := d.col.FindOne(ctx, bson.M{"client_telegram_id": clientID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return order.Referrer{}, policies.ErrNoReferrer
		}
		return order.Referrer{}, err
	}
	ref := order.Referrer{Name: doc.Name, TelegramID: doc.TelegramID}
	if !ref.Known() {
		return order.Referrer{}, policies.ErrNoReferrer
	}
	return ref, nil
}

var (
	_ policies.OrderRecorder  = (*OrderRepository)(nil)
	_ policies.ReferrerLookup = (*ReferrerDirectory)(nil)
	_ referral.Registry       = (*ReferrerDirectory)(nil)
)
