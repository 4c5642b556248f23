package support

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/app/dto"
	"storefront/internal/app/outbox"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/session"
	"storefront/internal/domain/shared/events"
	"storefront/internal/domain/shared/notice"
)

// RejectedError is a refused session transition. View is the session as it
// stands after the refusal, notices included.
type RejectedError struct {
	Err  error
	View dto.SessionView
}

func (e *RejectedError) Error() string { return e.Err.Error() }
func (e *RejectedError) Unwrap() error { return e.Err }

// RejectedView extracts the session view from a rejection, if err is one.
func RejectedView(err error) (dto.SessionView, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.View, true
	}
	return dto.SessionView{}, false
}

// Sessions applies transitions to stored sessions and publishes what they
// record.
type Sessions struct {
	Repo    session.Repository
	Catalog catalog.Reader
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   func() time.Time
}

func (r *Sessions) Now() time.Time {
	if r.Clock != nil {
		return r.Clock().UTC()
	}
	return time.Now().UTC()
}

// Apply runs fn on the session under the repository lock. A refused
// transition comes back as *RejectedError.
func (r *Sessions) Apply(ctx context.Context, id string, fn func(s *session.Session, now time.Time) error) (*dto.SessionView, error) {
	now := r.Now()
	s, err := r.Repo.Update(ctx, id, func(s *session.Session) error {
		return fn(s, now)
	})
	if s == nil {
		if err == nil {
			err = session.ErrSessionNotFound
		}
		return nil, err
	}
	view := r.Settle(ctx, s)
	if err != nil {
		return nil, &RejectedError{Err: err, View: view}
	}
	return &view, nil
}

// Settle drains s: events go to the outbox and notices into the view.
func (r *Sessions) Settle(ctx context.Context, s *session.Session) dto.SessionView {
	r.Publish(ctx, s.DrainEvents())
	return r.Render(s, s.DrainNotices())
}

// Publish hands evs to the outbox. Failures are logged; the state change
// they describe has already been stored.
func (r *Sessions) Publish(ctx context.Context, evs []events.DomainEvent) {
	if len(evs) == 0 {
		return
	}
	if err := outbox.RecordDomainEvents(ctx, r.Outbox, r.Encoder, evs); err != nil && r.Logger != nil {
		r.Logger.WarnContext(ctx, "events not recorded", "count", len(evs), "error", err)
	}
}

// Render builds the client view, quoting the draft against the selected profile.
func (r *Sessions) Render(s *session.Session, notices []notice.Notice) dto.SessionView {
	var selected *catalog.Profile
	if id := s.SelectedProfileID(); id != "" && r.Catalog != nil {
		if p, err := r.Catalog.Current().ByID(id); err == nil {
			selected = &p
		}
	}
	return dto.MapSession(s, selected, notices)
}

// Profile looks a profile up in the current catalog snapshot.
func (r *Sessions) Profile(id catalog.ProfileID) (catalog.Profile, error) {
	if r.Catalog == nil {
		return catalog.Profile{}, catalog.ErrProfileNotFound
	}
	return r.Catalog.Current().ByID(id)
}
