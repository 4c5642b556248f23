package memory

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"storefront/internal/app/policies"
	"storefront/internal/domain/order"
)

// Notifier accepts every order and logs it. Used when no bot token is set.
type Notifier struct {
	mu        sync.Mutex
	delivered []order.Order
	logger    *slog.Logger
	// Fail, when set, makes every delivery fail.
	Fail bool
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, proof policies.Proof, o order.Order) error {
	if proof.Body != nil {
		if _, err := io.Copy(io.Discard, proof.Body); err != nil {
			return err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail {
		return policies.ErrNotificationFailed
	}
	n.delivered = append(n.delivered, o)
	if n.logger != nil {
		n.logger.InfoContext(ctx, "order delivered", "order_id", o.ID, "profile_id", o.ProfileID, "total", o.TotalPrice)
	}
	return nil
}

func (n *Notifier) Delivered() []order.Order {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]order.Order(nil), n.delivered...)
}

var _ policies.NotificationGateway = (*Notifier)(nil)
