package session

import (
	"time"

	"storefront/internal/domain/catalog"
)

// Snapshot is the persistable form of a session. Pending events and notices
// are not part of it.
type Snapshot struct {
	ID           string              `json:"id" bson:"_id"`
	ClientID     string              `json:"client_id" bson:"client_id"`
	View         View                `json:"view" bson:"view"`
	Selected     string              `json:"selected,omitempty" bson:"selected,omitempty"`
	Offered      []string            `json:"offered,omitempty" bson:"offered,omitempty"`
	ImageIndex   int                 `json:"image_index" bson:"image_index"`
	Draft        *Draft              `json:"draft,omitempty" bson:"draft,omitempty"`
	ProofRef     string              `json:"proof_ref,omitempty" bson:"proof_ref,omitempty"`
	Submitting   bool                `json:"submitting" bson:"submitting"`
	AgeConfirmed bool                `json:"age_confirmed" bson:"age_confirmed"`
	Search       string              `json:"search" bson:"search"`
	Filters      catalog.FilterState `json:"filters" bson:"filters"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
	Version      int64               `json:"version" bson:"version"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.ID,
		ClientID:     s.ClientID,
		View:         s.view,
		Selected:     string(s.selected),
		Offered:      append([]string(nil), s.offered...),
		ImageIndex:   s.imageIndex,
		ProofRef:     s.proofRef,
		Submitting:   s.submitting,
		AgeConfirmed: s.ageConfirmed,
		Search:       s.search,
		Filters:      s.filters.Clone(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		Version:      s.Version,
	}
	if s.draft != nil {
		d := s.draft.Clone()
		snap.Draft = &d
	}
	return snap
}

// FromSnapshot rebuilds a session. A snapshot that breaks the selection
// invariant is brought back to HOME.
func FromSnapshot(snap Snapshot) *Session {
	s := &Session{
		ID:           snap.ID,
		ClientID:     snap.ClientID,
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
		Version:      snap.Version,
		view:         snap.View,
		selected:     catalog.ProfileID(snap.Selected),
		offered:      append([]string(nil), snap.Offered...),
		imageIndex:   snap.ImageIndex,
		proofRef:     snap.ProofRef,
		submitting:   snap.Submitting,
		ageConfirmed: snap.AgeConfirmed,
		search:       snap.Search,
		filters:      snap.Filters.Clone(),
	}
	if snap.Draft != nil {
		d := snap.Draft.Clone()
		s.draft = &d
	}
	if _, err := ParseView(string(s.view)); err != nil {
		s.view = ViewHome
	}
	if s.view.NeedsSelection() && s.selected == "" {
		s.resetHome()
	}
	if (s.view == ViewBooking || s.view == ViewConfirmation) && s.draft == nil {
		s.view = ViewProfile
	}
	if !s.view.NeedsSelection() {
		s.clearSelection()
	}
	return s
}
