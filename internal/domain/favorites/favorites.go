package favorites

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/shared/events"
	"storefront/internal/domain/shared/notice"
)

const (
	MessageAdded   = "Added to favorites"
	MessageRemoved = "Removed from favorites"
)

var ErrClientRequired = errors.New("favorites: client id is required")

// Set is the ordered collection of profiles a client marked as favorite.
type Set struct {
	ClientID string
	ids      []catalog.ProfileID

	events.EventRecorder
	notice.Board
}

func NewSet(clientID string) (*Set, error) {
	if clientID == "" {
		return nil, ErrClientRequired
	}
	return &Set{ClientID: clientID}, nil
}

// Restore rebuilds a set from persisted ids without recording anything.
func Restore(clientID string, ids []catalog.ProfileID) *Set {
	s := &Set{ClientID: clientID}
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle flips membership of id and returns the new state. Every call posts
// one notice and records one FavoriteToggled event.
func (s *Set) Toggle(id catalog.ProfileID, now time.Time) bool {
	added := !s.Contains(id)
	if added {
		s.ids = append(s.ids, id)
		s.Post(notice.LevelSuccess, MessageAdded, now)
	} else {
		s.remove(id)
		s.Post(notice.LevelInfo, MessageRemoved, now)
	}
	s.Record(FavoriteToggled{
		Client:    s.ClientID,
		ProfileID: string(id),
		Added:     added,
		At:        now.UTC(),
	})
	return added
}

func (s *Set) Contains(id catalog.ProfileID) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Set) IDs() []catalog.ProfileID {
	return append([]catalog.ProfileID(nil), s.ids...)
}

func (s *Set) Len() int { return len(s.ids) }

// List returns the favorite profiles in catalog order. Ids missing from the
// catalog are skipped.
func (s *Set) List(profiles []catalog.Profile) []catalog.Profile {
	out := make([]catalog.Profile, 0, len(s.ids))
	for _, p := range profiles {
		if s.Contains(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Set) Clone() *Set {
	return &Set{
		ClientID:      s.ClientID,
		ids:           s.IDs(),
		EventRecorder: s.CloneEvents(),
		Board:         s.CloneNotices(),
	}
}

func (s *Set) remove(id catalog.ProfileID) {
	out := s.ids[:0]
	for _, v := range s.ids {
		if v != id {
			out = append(out, v)
		}
	}
	s.ids = out
}

// Repository persists favorite sets per client.
type Repository interface {
	// Get returns the client's set; an unknown client has an empty set.
	Get(ctx context.Context, clientID string) (*Set, error)
	// Update applies fn to the client's set atomically and persists the result.
	Update(ctx context.Context, clientID string, fn func(*Set) error) (*Set, error)
}
