package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/shared/events"
	"storefront/internal/domain/shared/notice"
)

var (
	ErrSessionNotFound    = errors.New("session: not found")
	ErrSessionExists      = errors.New("session: already exists")
	ErrConcurrentUpdate   = errors.New("session: concurrent update")
	ErrSessionIDRequired  = errors.New("session: id is required")
	ErrClientRequired     = errors.New("session: client id is required")
	ErrInvalidClientID    = errors.New("session: client id must be a positive integer")
	ErrNoProfileSelected  = errors.New("session: no profile selected")
	ErrInvalidTransition  = errors.New("session: invalid view transition")
	ErrDraftLocked        = errors.New("session: booking draft is not editable in this view")
	ErrUnknownService     = errors.New("session: service is not offered by the selected profile")
	ErrNoServicesSelected = errors.New("session: select at least one service")
	ErrDateRequired       = errors.New("session: booking date is required")
	ErrProofRequired      = errors.New("session: payment proof is required")
	ErrSubmissionInFlight = errors.New("session: payment submission already in progress")
	ErrNotSubmitting      = errors.New("session: no payment submission in progress")
)

const (
	MessageBookingCreated = "Booking created"
	MessageSelectService  = "Select at least one service"
	MessageAttachProof    = "Attach the payment screenshot"
	MessagePaymentSent    = "Request accepted! Wait for confirmation from support."
	MessagePaymentFailed  = "Failed to send the request"
)

type View string

const (
	ViewHome         View = "HOME"
	ViewFavorites    View = "FAVORITES"
	ViewMore         View = "MORE"
	ViewProfile      View = "PROFILE"
	ViewBooking      View = "BOOKING"
	ViewConfirmation View = "CONFIRMATION"
)

func ParseView(raw string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(raw)))
	switch v {
	case ViewHome, ViewFavorites, ViewMore, ViewProfile, ViewBooking, ViewConfirmation:
		return v, nil
	}
	return "", ErrInvalidTransition
}

// Browsing views are siblings reachable from anywhere.
func (v View) Browsing() bool {
	return v == ViewHome || v == ViewFavorites || v == ViewMore
}

// NeedsSelection reports whether the view requires a selected profile.
func (v View) NeedsSelection() bool {
	return v == ViewProfile || v == ViewBooking || v == ViewConfirmation
}

// Session is one client's storefront state: the current view, the selected
// profile, the booking draft and the browse query. The selection is set
// exactly while the view is PROFILE, BOOKING or CONFIRMATION.
type Session struct {
	ID        string
	ClientID  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64

	view         View
	selected     catalog.ProfileID
	offered      []string
	imageIndex   int
	draft        *Draft
	proofRef     string
	submitting   bool
	ageConfirmed bool
	search       string
	filters      catalog.FilterState

	events.EventRecorder
	notice.Board
}

// Repository stores sessions. Update serialises mutations of one session.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update applies fn to a copy of the session and stores it when fn succeeds.
	// The returned session carries the pending events and notices even when fn
	// fails.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
}

func New(id, clientID string, now time.Time) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrSessionIDRequired
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrClientRequired
	}
	// Orders carry the client id as a Telegram user id.
	if n, err := strconv.ParseInt(clientID, 10, 64); err != nil || n <= 0 {
		return nil, ErrInvalidClientID
	}
	now = now.UTC()
	return &Session{
		ID:        id,
		ClientID:  clientID,
		CreatedAt: now,
		UpdatedAt: now,
		view:      ViewHome,
		filters:   catalog.DefaultFilters(),
	}, nil
}

func (s *Session) View() View                           { return s.view }
func (s *Session) SelectedProfileID() catalog.ProfileID { return s.selected }
func (s *Session) ImageIndex() int                      { return s.imageIndex }
func (s *Session) ProofRef() string                     { return s.proofRef }
func (s *Session) Submitting() bool                     { return s.submitting }
func (s *Session) AgeConfirmed() bool                   { return s.ageConfirmed }
func (s *Session) Search() string                       { return s.search }
func (s *Session) Filters() catalog.FilterState         { return s.filters.Clone() }

// Draft returns a copy of the booking draft, if one exists.
func (s *Session) Draft() (Draft, bool) {
	if s.draft == nil {
		return Draft{}, false
	}
	return s.draft.Clone(), true
}

// SelectProfile opens p from one of the browsing views.
func (s *Session) SelectProfile(p catalog.Profile, now time.Time) error {
	if !s.view.Browsing() {
		return ErrInvalidTransition
	}
	if p.ID == "" {
		return ErrNoProfileSelected
	}
	s.selected = p.ID
	s.offered = append([]string(nil), p.Services...)
	s.imageIndex = 0
	s.view = ViewProfile
	s.touch(now)
	s.Record(ProfileViewed{SessionID: s.ID, ClientID: s.ClientID, ProfileID: string(p.ID), At: s.UpdatedAt})
	return nil
}

// SetImageIndex moves the carousel cursor, clamped to the available images.
func (s *Session) SetImageIndex(index, imageCount int, now time.Time) error {
	if s.view != ViewProfile {
		return ErrInvalidTransition
	}
	switch {
	case imageCount <= 0 || index < 0:
		index = 0
	case index >= imageCount:
		index = imageCount - 1
	}
	s.imageIndex = index
	s.touch(now)
	return nil
}

// StartBooking opens a fresh draft for the selected profile.
func (s *Session) StartBooking(now time.Time) error {
	if s.view != ViewProfile {
		return ErrInvalidTransition
	}
	if s.selected == "" {
		return ErrNoProfileSelected
	}
	d := NewDraft()
	s.draft = &d
	s.view = ViewBooking
	s.touch(now)
	return nil
}

// ToggleService flips a service in the draft and reports whether it is selected.
func (s *Session) ToggleService(service string, now time.Time) (bool, error) {
	if err := s.editable(); err != nil {
		return false, err
	}
	if !s.offers(service) {
		return false, ErrUnknownService
	}
	selected := s.draft.toggle(service)
	s.touch(now)
	return selected, nil
}

func (s *Session) SetDuration(d pricing.Duration, now time.Time) error {
	if err := s.editable(); err != nil {
		return err
	}
	if !d.Valid() {
		return pricing.ErrUnknownDuration
	}
	s.draft.Duration = d
	s.touch(now)
	return nil
}

func (s *Session) SetDate(date string, now time.Time) error {
	if err := s.editable(); err != nil {
		return err
	}
	date = normalizeDate(date)
	if date == "" {
		return ErrDateRequired
	}
	s.draft.Date = date
	s.touch(now)
	return nil
}

// SubmitBooking moves the draft to confirmation. An empty service selection
// keeps the session in BOOKING and posts an error notice.
func (s *Session) SubmitBooking(now time.Time) error {
	if err := s.editable(); err != nil {
		if errors.Is(err, ErrDraftLocked) {
			return ErrInvalidTransition
		}
		return err
	}
	if len(s.draft.Services) == 0 {
		s.Post(notice.LevelError, MessageSelectService, now)
		return ErrNoServicesSelected
	}
	s.view = ViewConfirmation
	s.touch(now)
	s.Record(BookingAttempted{
		SessionID: s.ID,
		ClientID:  s.ClientID,
		ProfileID: string(s.selected),
		Services:  append([]string(nil), s.draft.Services...),
		Duration:  string(s.draft.Duration),
		At:        s.UpdatedAt,
	})
	s.Post(notice.LevelSuccess, MessageBookingCreated, now)
	return nil
}

// AttachPaymentProof keeps a reference to the uploaded proof of payment.
func (s *Session) AttachPaymentProof(ref string, now time.Time) error {
	if s.view != ViewConfirmation {
		return ErrInvalidTransition
	}
	if s.submitting {
		return ErrSubmissionInFlight
	}
	if strings.TrimSpace(ref) == "" {
		return ErrProofRequired
	}
	s.proofRef = ref
	s.touch(now)
	return nil
}

// Submission is what a payment submission needs from the session.
type Submission struct {
	SessionID string
	ClientID  string
	ProfileID catalog.ProfileID
	Draft     Draft
	ProofRef  string
}

// BeginSubmission raises the in-flight flag. Only one submission may be in
// flight per session.
func (s *Session) BeginSubmission(now time.Time) (Submission, error) {
	if s.view != ViewConfirmation {
		return Submission{}, ErrInvalidTransition
	}
	if s.submitting {
		return Submission{}, ErrSubmissionInFlight
	}
	if s.selected == "" || s.draft == nil {
		return Submission{}, ErrNoProfileSelected
	}
	if s.proofRef == "" {
		s.Post(notice.LevelError, MessageAttachProof, now)
		return Submission{}, ErrProofRequired
	}
	s.submitting = true
	s.touch(now)
	return Submission{
		SessionID: s.ID,
		ClientID:  s.ClientID,
		ProfileID: s.selected,
		Draft:     s.draft.Clone(),
		ProofRef:  s.proofRef,
	}, nil
}

// CompleteSubmission lowers the in-flight flag. On success the session
// returns HOME and the draft is consumed; on failure it stays where it is.
func (s *Session) CompleteSubmission(ok bool, now time.Time) error {
	if !s.submitting {
		return ErrNotSubmitting
	}
	s.submitting = false
	profile := s.selected
	if ok {
		s.resetHome()
		s.Post(notice.LevelSuccess, MessagePaymentSent, now)
	} else {
		s.Post(notice.LevelError, MessagePaymentFailed, now)
	}
	s.touch(now)
	s.Record(PaymentSubmitted{SessionID: s.ID, ClientID: s.ClientID, ProfileID: string(profile), Succeeded: ok, At: s.UpdatedAt})
	return nil
}

// ReturnHome leaves any view for HOME and discards the draft. A session
// with a payment in flight stays on CONFIRMATION until it completes.
func (s *Session) ReturnHome(now time.Time) error {
	if s.submitting {
		return ErrSubmissionInFlight
	}
	s.resetHome()
	s.touch(now)
	return nil
}

// Back moves one step along CONFIRMATION, BOOKING, PROFILE, HOME. It does
// nothing from the browsing views.
func (s *Session) Back(now time.Time) error {
	if s.submitting {
		return ErrSubmissionInFlight
	}
	switch s.view {
	case ViewConfirmation:
		s.view = ViewBooking
	case ViewBooking:
		s.view = ViewProfile
		s.draft = nil
		s.proofRef = ""
	case ViewProfile:
		s.resetHome()
	default:
		return nil
	}
	s.touch(now)
	return nil
}

// Navigate switches between the browsing views.
func (s *Session) Navigate(target View, now time.Time) error {
	if !target.Browsing() {
		return ErrInvalidTransition
	}
	if s.submitting {
		return ErrSubmissionInFlight
	}
	if s.view.NeedsSelection() {
		s.clearSelection()
	}
	s.view = target
	s.touch(now)
	return nil
}

func (s *Session) ConfirmAge(now time.Time) {
	if s.ageConfirmed {
		return
	}
	s.ageConfirmed = true
	s.touch(now)
	s.Record(AgeConfirmed{SessionID: s.ID, ClientID: s.ClientID, At: s.UpdatedAt})
}

func (s *Session) SetSearch(text string, now time.Time) {
	s.search = text
	s.touch(now)
}

func (s *Session) ApplyFilters(f catalog.FilterState, now time.Time) {
	s.filters = f.Clone()
	s.touch(now)
}

func (s *Session) ResetFilters(now time.Time) {
	s.filters = catalog.DefaultFilters()
	s.touch(now)
}

// Browse narrows profiles with the session's search text and filters.
func (s *Session) Browse(profiles []catalog.Profile) []catalog.Profile {
	return catalog.FilterCatalog(profiles, s.search, s.filters)
}

func (s *Session) Clone() *Session {
	c := *s
	c.offered = append([]string(nil), s.offered...)
	if s.draft != nil {
		d := s.draft.Clone()
		c.draft = &d
	}
	c.filters = s.filters.Clone()
	c.EventRecorder = s.CloneEvents()
	c.Board = s.CloneNotices()
	return &c
}

func (s *Session) editable() error {
	if s.view != ViewBooking || s.draft == nil {
		return ErrDraftLocked
	}
	if s.submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

func (s *Session) offers(service string) bool {
	for _, o := range s.offered {
		if o == service {
			return true
		}
	}
	return false
}

func (s *Session) resetHome() {
	s.clearSelection()
	s.view = ViewHome
}

func (s *Session) clearSelection() {
	s.selected = ""
	s.offered = nil
	s.imageIndex = 0
	s.draft = nil
	s.proofRef = ""
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}
