package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/shared/notice"
)

var now = time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

func anna() catalog.Profile {
	return catalog.Profile{
		ID:       "p-1",
		Name:     "Anna",
		Price:    1000,
		Services: []string{"Classic", "Massage", "Striptease", "Role play"},
		Images:   []string{"a.jpg", "b.jpg", "c.jpg"},
	}
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("s-1", "42", now)
	require.NoError(t, err)
	return s
}

func inBooking(t *testing.T) *Session {
	t.Helper()
	s := newSession(t)
	require.NoError(t, s.SelectProfile(anna(), now))
	require.NoError(t, s.StartBooking(now))
	return s
}

func inConfirmation(t *testing.T) *Session {
	t.Helper()
	s := inBooking(t)
	_, err := s.ToggleService("Classic", now)
	require.NoError(t, err)
	require.NoError(t, s.SubmitBooking(now))
	s.DrainNotices()
	s.DrainEvents()
	return s
}

func TestNewSessionStartsHome(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, ViewHome, s.View())
	assert.Empty(t, s.SelectedProfileID())
	assert.Equal(t, catalog.DefaultFilters(), s.Filters())

	_, err := New("", "42", now)
	assert.ErrorIs(t, err, ErrSessionIDRequired)
	_, err = New("s-2", "1.5", now)
	assert.ErrorIs(t, err, ErrInvalidClientID)
	_, err = New("s-2", "-3", now)
	assert.ErrorIs(t, err, ErrInvalidClientID)
	_, err = New("s", " ", now)
	assert.ErrorIs(t, err, ErrClientRequired)
}

func TestSelectProfileFromEveryBrowsingView(t *testing.T) {
	for _, from := range []View{ViewHome, ViewFavorites, ViewMore} {
		s := newSession(t)
		require.NoError(t, s.Navigate(from, now))
		require.NoError(t, s.SelectProfile(anna(), now))

		assert.Equal(t, ViewProfile, s.View())
		assert.Equal(t, catalog.ProfileID("p-1"), s.SelectedProfileID())
		assert.Equal(t, 0, s.ImageIndex())
		evs := s.DrainEvents()
		require.Len(t, evs, 1)
		assert.Equal(t, "session.profile_viewed", evs[0].EventName())
	}
}

func TestSelectProfileOutsideBrowsingIsRejected(t *testing.T) {
	s := inBooking(t)
	assert.ErrorIs(t, s.SelectProfile(anna(), now), ErrInvalidTransition)
	assert.Equal(t, ViewBooking, s.View())
}

func TestStartBookingCreatesFreshDraft(t *testing.T) {
	s := inBooking(t)
	d, ok := s.Draft()
	require.True(t, ok)
	assert.Empty(t, d.Services)
	assert.Equal(t, pricing.OneHour, d.Duration)
	assert.Equal(t, DefaultDate, d.Date)
}

func TestStartBookingRequiresProfileView(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.StartBooking(now), ErrInvalidTransition)
}

func TestDraftEditsOnlyInBooking(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.SelectProfile(anna(), now))
	_, err := s.ToggleService("Classic", now)
	assert.ErrorIs(t, err, ErrDraftLocked)

	s = inConfirmation(t)
	_, err = s.ToggleService("Massage", now)
	assert.ErrorIs(t, err, ErrDraftLocked)
	assert.ErrorIs(t, s.SetDuration(pricing.Overnight, now), ErrDraftLocked)
	assert.ErrorIs(t, s.SetDate("Tomorrow", now), ErrDraftLocked)
}

func TestToggleServiceKeepsSelectionOrder(t *testing.T) {
	s := inBooking(t)
	for _, name := range []string{"Striptease", "Classic", "Massage"} {
		on, err := s.ToggleService(name, now)
		require.NoError(t, err)
		assert.True(t, on)
	}
	off, err := s.ToggleService("Classic", now)
	require.NoError(t, err)
	assert.False(t, off)

	d, _ := s.Draft()
	assert.Equal(t, []string{"Striptease", "Massage"}, d.Services)

	_, err = s.ToggleService("Unknown", now)
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestSetDurationAndDate(t *testing.T) {
	s := inBooking(t)
	require.NoError(t, s.SetDuration(pricing.Overnight, now))
	assert.ErrorIs(t, s.SetDuration("weekend", now), pricing.ErrUnknownDuration)
	require.NoError(t, s.SetDate("  Friday,   23:00 ", now))
	assert.ErrorIs(t, s.SetDate("   ", now), ErrDateRequired)

	d, _ := s.Draft()
	assert.Equal(t, pricing.Overnight, d.Duration)
	assert.Equal(t, "Friday, 23:00", d.Date)
	assert.Equal(t, int64(5000), d.Total(1000))
}

func TestSubmitBookingGuardKeepsBooking(t *testing.T) {
	s := inBooking(t)
	err := s.SubmitBooking(now)

	assert.ErrorIs(t, err, ErrNoServicesSelected)
	assert.Equal(t, ViewBooking, s.View())
	assert.Empty(t, s.PendingEvents())
	notices := s.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.LevelError, notices[0].Level)
	assert.Equal(t, MessageSelectService, notices[0].Message)
}

func TestSubmitBookingMovesToConfirmation(t *testing.T) {
	s := inBooking(t)
	_, err := s.ToggleService("Massage", now)
	require.NoError(t, err)
	require.NoError(t, s.SubmitBooking(now))

	assert.Equal(t, ViewConfirmation, s.View())
	evs := s.DrainEvents()
	require.Len(t, evs, 1)
	attempt, ok := evs[0].(BookingAttempted)
	require.True(t, ok)
	assert.Equal(t, []string{"Massage"}, attempt.Services)
	notices := s.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, MessageBookingCreated, notices[0].Message)
}

func TestBackChain(t *testing.T) {
	s := inConfirmation(t)

	require.NoError(t, s.Back(now))
	assert.Equal(t, ViewBooking, s.View())
	require.NoError(t, s.Back(now))
	assert.Equal(t, ViewProfile, s.View())
	require.NoError(t, s.Back(now))
	assert.Equal(t, ViewHome, s.View())
	assert.Empty(t, s.SelectedProfileID())
	require.NoError(t, s.Back(now))
	assert.Equal(t, ViewHome, s.View())
}

func TestBackFromSiblingsIsNoop(t *testing.T) {
	for _, v := range []View{ViewFavorites, ViewMore} {
		s := newSession(t)
		require.NoError(t, s.Navigate(v, now))
		require.NoError(t, s.Back(now))
		assert.Equal(t, v, s.View())
	}
}

func TestBackChainIgnoresEntryView(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Navigate(ViewFavorites, now))
	require.NoError(t, s.SelectProfile(anna(), now))
	require.NoError(t, s.Back(now))
	assert.Equal(t, ViewHome, s.View())
}

func TestNavigateOnlyAmongBrowsingViews(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.Navigate(ViewBooking, now), ErrInvalidTransition)

	s = inBooking(t)
	require.NoError(t, s.Navigate(ViewMore, now))
	assert.Equal(t, ViewMore, s.View())
	assert.Empty(t, s.SelectedProfileID())
	_, ok := s.Draft()
	assert.False(t, ok)
}

func TestReturnHomeDiscardsDraft(t *testing.T) {
	s := inConfirmation(t)
	require.NoError(t, s.AttachPaymentProof("proof-1", now))
	require.NoError(t, s.ReturnHome(now))

	assert.Equal(t, ViewHome, s.View())
	assert.Empty(t, s.ProofRef())
	_, ok := s.Draft()
	assert.False(t, ok)
}

func TestSubmissionRequiresProof(t *testing.T) {
	s := inConfirmation(t)
	_, err := s.BeginSubmission(now)
	assert.ErrorIs(t, err, ErrProofRequired)
	assert.False(t, s.Submitting())
	notices := s.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, MessageAttachProof, notices[0].Message)
}

func TestSubmissionInFlightRejectsSecondAttempt(t *testing.T) {
	s := inConfirmation(t)
	require.NoError(t, s.AttachPaymentProof("proof-1", now))

	sub, err := s.BeginSubmission(now)
	require.NoError(t, err)
	assert.Equal(t, catalog.ProfileID("p-1"), sub.ProfileID)
	assert.Equal(t, "proof-1", sub.ProofRef)
	assert.Equal(t, []string{"Classic"}, sub.Draft.Services)

	_, err = s.BeginSubmission(now)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, s.AttachPaymentProof("proof-2", now), ErrSubmissionInFlight)
}

func TestSubmissionInFlightPinsConfirmation(t *testing.T) {
	s := inConfirmation(t)
	require.NoError(t, s.AttachPaymentProof("proof-1", now))
	_, err := s.BeginSubmission(now)
	require.NoError(t, err)

	assert.ErrorIs(t, s.ReturnHome(now), ErrSubmissionInFlight)
	assert.ErrorIs(t, s.Back(now), ErrSubmissionInFlight)
	assert.ErrorIs(t, s.Navigate(ViewFavorites, now), ErrSubmissionInFlight)
	assert.Equal(t, ViewConfirmation, s.View())
	assert.Equal(t, catalog.ProfileID("p-1"), s.SelectedProfileID())

	// Once delivery completes the client is free to start a new booking
	// and nothing resets it behind their back.
	require.NoError(t, s.CompleteSubmission(true, now))
	require.NoError(t, s.SelectProfile(anna(), now))
	require.NoError(t, s.StartBooking(now))
	_, err = s.ToggleService("Massage", now)
	require.NoError(t, err)
	assert.Equal(t, ViewBooking, s.View())
}

func TestCompleteSubmissionSuccessReturnsHome(t *testing.T) {
	s := inConfirmation(t)
	require.NoError(t, s.AttachPaymentProof("proof-1", now))
	_, err := s.BeginSubmission(now)
	require.NoError(t, err)

	require.NoError(t, s.CompleteSubmission(true, now))
	assert.Equal(t, ViewHome, s.View())
	assert.False(t, s.Submitting())
	assert.Empty(t, s.ProofRef())
	notices := s.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.LevelSuccess, notices[0].Level)
	evs := s.DrainEvents()
	require.Len(t, evs, 1)
	assert.True(t, evs[0].(PaymentSubmitted).Succeeded)
}

func TestCompleteSubmissionFailureStaysInConfirmation(t *testing.T) {
	s := inConfirmation(t)
	require.NoError(t, s.AttachPaymentProof("proof-1", now))
	_, err := s.BeginSubmission(now)
	require.NoError(t, err)

	require.NoError(t, s.CompleteSubmission(false, now))
	assert.Equal(t, ViewConfirmation, s.View())
	assert.Equal(t, "proof-1", s.ProofRef())
	notices := s.DrainNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, MessagePaymentFailed, notices[0].Message)

	_, err = s.BeginSubmission(now)
	assert.NoError(t, err)
	assert.ErrorIs(t, newSession(t).CompleteSubmission(true, now), ErrNotSubmitting)
}

func TestSetImageIndexClamps(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.SetImageIndex(1, 3, now), ErrInvalidTransition)

	require.NoError(t, s.SelectProfile(anna(), now))
	require.NoError(t, s.SetImageIndex(2, 3, now))
	assert.Equal(t, 2, s.ImageIndex())
	require.NoError(t, s.SetImageIndex(9, 3, now))
	assert.Equal(t, 2, s.ImageIndex())
	require.NoError(t, s.SetImageIndex(-1, 3, now))
	assert.Equal(t, 0, s.ImageIndex())
}

func TestConfirmAgeRecordsOnce(t *testing.T) {
	s := newSession(t)
	s.ConfirmAge(now)
	s.ConfirmAge(now)
	assert.True(t, s.AgeConfirmed())
	assert.Len(t, s.DrainEvents(), 1)
}

func TestBrowseUsesSearchAndFilters(t *testing.T) {
	profiles := []catalog.Profile{
		{ID: "1", Name: "Anna", City: "Moscow", Age: 25, Height: 170, Weight: 55},
		{ID: "2", Name: "Bella", City: "Kazan", Age: 30, Height: 165, Weight: 50},
	}
	s := newSession(t)
	assert.Len(t, s.Browse(profiles), 2)

	s.SetSearch("kaz", now)
	got := s.Browse(profiles)
	require.Len(t, got, 1)
	assert.Equal(t, catalog.ProfileID("2"), got[0].ID)

	f := catalog.DefaultFilters()
	f.MinAge = 31
	s.ApplyFilters(f, now)
	assert.Empty(t, s.Browse(profiles))

	s.ResetFilters(now)
	assert.Len(t, s.Browse(profiles), 1)
}

func TestSnapshotRoundTripAndRepair(t *testing.T) {
	s := inConfirmation(t)
	require.NoError(t, s.AttachPaymentProof("proof-1", now))
	s.Version = 3

	back := FromSnapshot(s.Snapshot())
	assert.Equal(t, ViewConfirmation, back.View())
	assert.Equal(t, "proof-1", back.ProofRef())
	assert.Equal(t, int64(3), back.Version)
	_, err := back.ToggleService("Classic", now)
	assert.ErrorIs(t, err, ErrDraftLocked)

	broken := s.Snapshot()
	broken.Selected = ""
	assert.Equal(t, ViewHome, FromSnapshot(broken).View())
}

func TestCloneIsDetached(t *testing.T) {
	s := inBooking(t)
	c := s.Clone()
	_, err := c.ToggleService("Classic", now)
	require.NoError(t, err)

	d, _ := s.Draft()
	assert.Empty(t, d.Services)
}
