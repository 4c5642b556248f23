package favorites

import "time"

type FavoriteToggled struct {
	Client    string    `json:"client_id"`
	ProfileID string    `json:"profile_id"`
	Added     bool      `json:"added"`
	At        time.Time `json:"occurred_at"`
}

func (e FavoriteToggled) EventName() string     { return "favorites.toggled" }
func (e FavoriteToggled) AggregateID() string   { return e.Client }
func (e FavoriteToggled) OccurredAt() time.Time { return e.At }
