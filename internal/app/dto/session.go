package dto

import (
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/session"
	"storefront/internal/domain/shared/notice"
)

type Notice struct {
	ID      int64     `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Draft struct {
	Services []string          `json:"services"`
	Duration string            `json:"duration"`
	Date     string            `json:"date"`
	Quote    pricing.Breakdown `json:"quote"`
}

// SessionView is what a client sees after every interaction.
type SessionView struct {
	SessionID     string              `json:"session_id"`
	View          string              `json:"view"`
	ProfileID     string              `json:"profile_id,omitempty"`
	ImageIndex    int                 `json:"image_index"`
	AgeConfirmed  bool                `json:"age_confirmed"`
	Search        string              `json:"search"`
	Filters       catalog.FilterState `json:"filters"`
	Draft         *Draft              `json:"draft,omitempty"`
	ProofAttached bool                `json:"proof_attached"`
	Submitting    bool                `json:"submitting"`
	Notices       []Notice            `json:"notices"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// MapSession renders s. The draft is quoted against selected when it is set.
func MapSession(s *session.Session, selected *catalog.Profile, notices []notice.Notice) SessionView {
	view := SessionView{
		SessionID:     s.ID,
		View:          string(s.View()),
		ProfileID:     string(s.SelectedProfileID()),
		ImageIndex:    s.ImageIndex(),
		AgeConfirmed:  s.AgeConfirmed(),
		Search:        s.Search(),
		Filters:       s.Filters(),
		ProofAttached: s.ProofRef() != "",
		Submitting:    s.Submitting(),
		Notices:       MapNotices(notices),
		UpdatedAt:     s.UpdatedAt,
	}
	if d, ok := s.Draft(); ok {
		dv := &Draft{
			Services: d.Services,
			Duration: string(d.Duration),
			Date:     d.Date,
		}
		if selected != nil {
			dv.Quote = d.Quote(selected.Services, selected.Price)
		}
		view.Draft = dv
	}
	return view
}

func MapNotices(ns []notice.Notice) []Notice {
	out := make([]Notice, 0, len(ns))
	for _, n := range ns {
		out = append(out, Notice{ID: n.ID, Level: string(n.Level), Message: n.Message, At: n.At})
	}
	return out
}

type Favorites struct {
	Items []ProfileCard `json:"items"`
	IDs   []string      `json:"ids"`
}

type FavoriteToggle struct {
	ProfileID string   `json:"profile_id"`
	Favorite  bool     `json:"favorite"`
	Notices   []Notice `json:"notices"`
}

// PaymentReceipt is returned once a payment submission has been accepted.
type PaymentReceipt struct {
	OrderID    string      `json:"order_id"`
	TotalPrice int64       `json:"total_price"`
	Session    SessionView `json:"session"`
}

type ProofUpload struct {
	Ref     string      `json:"ref"`
	Size    int64       `json:"size"`
	Session SessionView `json:"session"`
}

type SessionToken struct {
	SessionID string      `json:"session_id"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Session   SessionView `json:"session"`
}
