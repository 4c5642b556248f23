package session

import "time"

type ProfileViewed struct {
	SessionID string    `json:"session_id"`
	ClientID  string    `json:"client_id"`
	ProfileID string    `json:"profile_id"`
	At        time.Time `json:"occurred_at"`
}

func (e ProfileViewed) EventName() string     { return "session.profile_viewed" }
func (e ProfileViewed) AggregateID() string   { return e.SessionID }
func (e ProfileViewed) OccurredAt() time.Time { return e.At }

type BookingAttempted struct {
	SessionID string    `json:"session_id"`
	ClientID  string    `json:"client_id"`
	ProfileID string    `json:"profile_id"`
	Services  []string  `json:"services"`
	Duration  string    `json:"duration"`
	At        time.Time `json:"occurred_at"`
}

func (e BookingAttempted) EventName() string     { return "session.booking_attempted" }
func (e BookingAttempted) AggregateID() string   { return e.SessionID }
func (e BookingAttempted) OccurredAt() time.Time { return e.At }

type PaymentSubmitted struct {
	SessionID string    `json:"session_id"`
	ClientID  string    `json:"client_id"`
	ProfileID string    `json:"profile_id"`
	Succeeded bool      `json:"succeeded"`
	At        time.Time `json:"occurred_at"`
}

func (e PaymentSubmitted) EventName() string     { return "session.payment_submitted" }
func (e PaymentSubmitted) AggregateID() string   { return e.SessionID }
func (e PaymentSubmitted) OccurredAt() time.Time { return e.At }

type AgeConfirmed struct {
	SessionID string    `json:"session_id"`
	ClientID  string    `json:"client_id"`
	At        time.Time `json:"occurred_at"`
}

func (e AgeConfirmed) EventName() string     { return "session.age_confirmed" }
func (e AgeConfirmed) AggregateID() string   { return e.SessionID }
func (e AgeConfirmed) OccurredAt() time.Time { return e.At }
