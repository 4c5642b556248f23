package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"storefront/internal/app/policies"
	"storefront/internal/domain/order"
	"storefront/internal/domain/referral"
)

// BookingRepository writes delivered orders into bookings.
type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const insertBooking = `
	INSERT INTO bookings (
		profile_id, client_telegram_id, client_username, client_first_name,
		services, duration, booking_date, total_price, status, payment_method
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (r *BookingRepository) Record(ctx context.Context, o order.Order) error {
	profileID, err := strconv.ParseInt(string(o.ProfileID), 10, 64)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertBooking,
		profileID, o.ClientID, o.ClientUsername, o.ClientName,
		pq.Array(o.Services), string(o.Duration), o.BookingDate, o.TotalPrice,
		string(o.Status), o.PaymentMethod,
	)
	return err
}

// ReferrerDirectory resolves the worker who brought a client.
type ReferrerDirectory struct {
	db *sqlx.DB
}

func NewReferrerDirectory(db *sqlx.DB) *ReferrerDirectory {
	return &ReferrerDirectory{db: db}
}

type referrerRow struct {
	FirstName  sql.NullString `db:"first_name"`
	Username   sql.NullString `db:"username"`
	TelegramID sql.NullInt64  `db:"telegram_id"`
}

func (r referrerRow) toDomain() order.Referrer {
	name := r.FirstName.String
	if name == "" {
		name = r.Username.String
	}
	return order.Referrer{Name: name, TelegramID: r.TelegramID.Int64}
}

const selectReferrer = `
	SELECT w.first_name, w.username, w.telegram_id
	FROM worker_clients wc
	JOIN workers w ON w.id = wc.worker_id
	WHERE wc.telegram_id = $1
	LIMIT 1
`

func (d *ReferrerDirectory) Referrer(ctx context.Context, clientID int64) (order.Referrer, error) {
	var row referrerRow
	if err := d.db.GetContext(ctx, &row, selectReferrer, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order.Referrer{}, policies.ErrNoReferrer
		}
		return order.Referrer{}, err
	}
	ref := row.toDomain()
	if !ref.Known() {
		return order.Referrer{}, policies.ErrNoReferrer
	}
	return ref, nil
}

type workerClientRow struct {
	WorkerID   int64          `db:"worker_id"`
	TelegramID int64          `db:"telegram_id"`
	Username   sql.NullString `db:"username"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	CreatedAt  time.Time      `db:"created_at"`
}

func newWorkerClientRow(workerID int64, r referral.Registration) workerClientRow {
	return workerClientRow{
		WorkerID:   workerID,
		TelegramID: r.Client.TelegramID,
		Username:   nullString(r.Client.Username),
		FirstName:  nullString(r.Client.FirstName),
		LastName:   nullString(r.Client.LastName),
		CreatedAt:  r.At,
	}
}

const insertWorkerClient = `
	INSERT INTO worker_clients (worker_id, telegram_id, username, first_name, last_name, created_at)
	VALUES (:worker_id, :telegram_id, :username, :first_name, :last_name, :created_at)
`

// Register links the client to the worker owning the referral code. A client
// already present in worker_clients keeps its first worker.
func (d *ReferrerDirectory) Register(ctx context.Context, r referral.Registration) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var workerID int64
	if err := tx.GetContext(ctx, &workerID, `SELECT id FROM workers WHERE referral_code = $1`, r.Code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return referral.ErrUnknownCode
		}
		return err
	}
	var linked bool
	if err := tx.GetContext(ctx, &linked, `SELECT EXISTS (SELECT 1 FROM worker_clients WHERE telegram_id = $1)`, r.Client.TelegramID); err != nil {
		return err
	}
	if linked {
		return referral.ErrAlreadyReferred
	}
	if _, err := tx.NamedExecContext(ctx, insertWorkerClient, newWorkerClientRow(workerID, r)); err != nil {
		if isUniqueViolation(err) {
			return referral.ErrAlreadyReferred
		}
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

var (
	_ policies.OrderRecorder  = (*BookingRepository)(nil)
	_ policies.ReferrerLookup = (*ReferrerDirectory)(nil)
	_ referral.Registry       = (*ReferrerDirectory)(nil)
)
