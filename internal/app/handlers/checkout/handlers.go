package checkout

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/support"
	"storefront/internal/app/policies"
	"storefront/internal/domain/order"
	"storefront/internal/domain/session"
)

const (
	DefaultMaxProofSize    = 10 << 20
	DefaultDeliveryTimeout = 30 * time.Second
)

var (
	ErrProofNotImage = errors.New("checkout: payment proof must be an image")
	ErrProofTooLarge = errors.New("checkout: payment proof is too large")
	ErrBodyRequired  = errors.New("checkout: payment proof body is required")
)

type Handlers struct {
	Sessions  *support.Sessions
	Proofs    policies.ProofStore
	Gateway   policies.NotificationGateway
	Referrers policies.ReferrerLookup
	Orders    policies.OrderRecorder

	MaxProofSize    int64
	DeliveryTimeout time.Duration
	NewID           func() string
}

func (h *Handlers) maxProofSize() int64 {
	if h.MaxProofSize > 0 {
		return h.MaxProofSize
	}
	return DefaultMaxProofSize
}

func (h *Handlers) deliveryTimeout() time.Duration {
	if h.DeliveryTimeout > 0 {
		return h.DeliveryTimeout
	}
	return DefaultDeliveryTimeout
}

func (h *Handlers) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

// AttachProof stores the upload and then attaches it to the session. The
// session is checked first so that uploads for the wrong view are not kept.
func (h *Handlers) AttachProof(ctx context.Context, cmd AttachProofCommand) (*dto.ProofUpload, error) {
	if cmd.Body == nil {
		return nil, ErrBodyRequired
	}
	if !strings.HasPrefix(strings.ToLower(cmd.ContentType), "image/") {
		return nil, ErrProofNotImage
	}
	if cmd.Size > h.maxProofSize() {
		return nil, ErrProofTooLarge
	}
	s, err := h.Sessions.Repo.Get(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if s.View() != session.ViewConfirmation {
		return nil, session.ErrInvalidTransition
	}
	if s.Submitting() {
		return nil, session.ErrSubmissionInFlight
	}

	key := "proofs/" + cmd.SessionID + "/" + h.newID() + strings.ToLower(path.Ext(cmd.FileName))
	stored, err := h.Proofs.Put(ctx, key, cmd.Body, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store payment proof: %w", err)
	}
	view, err := h.Sessions.Apply(ctx, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.AttachPaymentProof(stored.Ref, now)
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProofUpload{Ref: stored.Ref, Size: stored.Size, Session: *view}, nil
}

// SubmitPayment sends the booking to the operators' channel. The session is
// marked in flight for the duration of the delivery; the outcome decides
// whether it returns HOME or stays on CONFIRMATION.
func (h *Handlers) SubmitPayment(ctx context.Context, cmd SubmitPaymentCommand) (*dto.PaymentReceipt, error) {
	now := h.Sessions.Now()
	var sub session.Submission
	s, err := h.Sessions.Repo.Update(ctx, cmd.SessionID, func(s *session.Session) error {
		var err error
		sub, err = s.BeginSubmission(now)
		return err
	})
	if s == nil {
		if err == nil {
			err = session.ErrSessionNotFound
		}
		return nil, err
	}
	if err != nil {
		return nil, &support.RejectedError{Err: err, View: h.Sessions.Settle(ctx, s)}
	}

	// The delivery and the release of the in-flight flag must outlive a
	// client that disconnects mid-request.
	detached := context.WithoutCancel(ctx)
	deliverCtx, cancel := context.WithTimeout(detached, h.deliveryTimeout())
	defer cancel()
	o, deliverErr := h.deliver(deliverCtx, sub, cmd, now)
	if deliverErr != nil && h.Sessions.Logger != nil {
		h.Sessions.Logger.ErrorContext(ctx, "payment delivery failed", "session_id", sub.SessionID, "profile_id", sub.ProfileID, "error", deliverErr)
	}

	view, err := h.Sessions.Apply(detached, cmd.SessionID, func(s *session.Session, now time.Time) error {
		return s.CompleteSubmission(deliverErr == nil, now)
	})
	if err != nil {
		return nil, err
	}
	if deliverErr != nil {
		if !errors.Is(deliverErr, policies.ErrNotificationFailed) {
			deliverErr = fmt.Errorf("%w: %w", policies.ErrNotificationFailed, deliverErr)
		}
		return nil, &support.RejectedError{Err: deliverErr, View: *view}
	}
	return &dto.PaymentReceipt{OrderID: o.ID, TotalPrice: o.TotalPrice, Session: *view}, nil
}

func (h *Handlers) deliver(ctx context.Context, sub session.Submission, cmd SubmitPaymentCommand, now time.Time) (order.Order, error) {
	profile, err := h.Sessions.Profile(sub.ProfileID)
	if err != nil {
		return order.Order{}, err
	}
	clientID, err := strconv.ParseInt(sub.ClientID, 10, 64)
	if err != nil {
		return order.Order{}, fmt.Errorf("client id %q: %w", sub.ClientID, err)
	}
	body, meta, err := h.Proofs.Get(ctx, sub.ProofRef)
	if err != nil {
		return order.Order{}, err
	}
	defer body.Close()

	o, err := order.Build(order.Params{
		ID:             h.newID(),
		Profile:        profile,
		ClientID:       clientID,
		ClientName:     cmd.ClientName,
		ClientUsername: cmd.ClientUsername,
		Services:       sub.Draft.Services,
		Duration:       sub.Draft.Duration,
		BookingDate:    sub.Draft.Date,
		Referrer:       h.referrer(ctx, clientID),
		ProofURL:       meta.URL,
		Now:            now,
	})
	if err != nil {
		return order.Order{}, err
	}
	proof := policies.Proof{
		Name:        path.Base(meta.Ref),
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Body:        body,
	}
	if err := h.Gateway.Notify(ctx, proof, o); err != nil {
		return order.Order{}, err
	}
	if h.Orders != nil {
		if err := h.Orders.Record(ctx, o); err != nil && h.Sessions.Logger != nil {
			h.Sessions.Logger.WarnContext(ctx, "order not recorded", "order_id", o.ID, "error", err)
		}
	}
	return o, nil
}

// referrer never fails the submission; an unreachable lookup means no referrer.
func (h *Handlers) referrer(ctx context.Context, clientID int64) order.Referrer {
	if h.Referrers == nil {
		return order.Referrer{}
	}
	ref, err := h.Referrers.Referrer(ctx, clientID)
	if err != nil {
		if !errors.Is(err, policies.ErrNoReferrer) && h.Sessions.Logger != nil {
			h.Sessions.Logger.WarnContext(ctx, "referrer lookup failed", "client_id", clientID, "error", err)
		}
		return order.Referrer{}
	}
	return ref
}

// Retryable reports whether a payment failure may be retried under the same
// idempotency key.
func Retryable(err error) bool {
	return errors.Is(err, policies.ErrNotificationFailed) ||
		errors.Is(err, session.ErrSubmissionInFlight) ||
		errors.Is(err, session.ErrProofRequired) ||
		errors.Is(err, session.ErrConcurrentUpdate) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (h *Handlers) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, attachProofKey, commands.HandlerFunc[AttachProofCommand, *dto.ProofUpload](h.AttachProof))
	commands.RegisterHandler(bus, submitPaymentKey, commands.HandlerFunc[SubmitPaymentCommand, *dto.PaymentReceipt](h.SubmitPayment))
}
