package policies

import (
	"context"
	"errors"
	"io"

	"storefront/internal/domain/order"
)

var ErrNotificationFailed = errors.New("policies: notification delivery failed")

// Proof is the payment screenshot delivered alongside an order.
type Proof struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// NotificationGateway delivers a completed order to the operators' channel.
// A nil error means the channel accepted the message.
type NotificationGateway interface {
	Notify(ctx context.Context, proof Proof, o order.Order) error
}

// OrderRecorder persists delivered orders. Recording is best-effort.
type OrderRecorder interface {
	Record(ctx context.Context, o order.Order) error
}
