package policies

import (
	"context"
	"errors"

	"storefront/internal/domain/order"
)

// ErrNoReferrer is returned when the client was not brought by anyone.
var ErrNoReferrer = errors.New("policies: no referrer for client")

type ReferrerLookup interface {
	Referrer(ctx context.Context, clientID int64) (order.Referrer, error)
}
