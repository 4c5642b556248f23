package memory

import (
	"context"
	"sync"

	"storefront/internal/app/policies"
	"storefront/internal/domain/order"
	"storefront/internal/domain/referral"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders []order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Record(ctx context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return nil
}

func (r *OrderRepository) List() []order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]order.Order(nil), r.orders...)
}

// ReferrerDirectory maps client ids to the referrer that brought them and
// referral codes to the workers that own them.
type ReferrerDirectory struct {
	mu      sync.RWMutex
	items   map[int64]order.Referrer
	workers map[string]order.Referrer
}

func NewReferrerDirectory() *ReferrerDirectory {
	return &ReferrerDirectory{
		items:   make(map[int64]order.Referrer),
		workers: make(map[string]order.Referrer),
	}
}

// AddWorker makes code resolve to worker.
func (d *ReferrerDirectory) AddWorker(code string, worker order.Referrer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.workers[code] = worker
}

func (d *ReferrerDirectory) Register(ctx context.Context, r referral.Registration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	worker, ok := d.workers[r.Code]
	if !ok {
		return referral.ErrUnknownCode
	}
	if _, linked := d.items[r.Client.TelegramID]; linked {
		return referral.ErrAlreadyReferred
	}
	d.items[r.Client.TelegramID] = worker
	return nil
}

func (d *ReferrerDirectory) Link(clientID int64, ref order.Referrer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items[clientID] = ref
}

func (d *ReferrerDirectory) Referrer(ctx context.Context, clientID int64) (order.Referrer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ref, ok := d.items[clientID]
	if !ok {
		return order.Referrer{}, policies.ErrNoReferrer
	}
	return ref, nil
}

var (
	_ policies.OrderRecorder  = (*OrderRepository)(nil)
	_ policies.ReferrerLookup = (*ReferrerDirectory)(nil)
	_ referral.Registry       = (*ReferrerDirectory)(nil)
)
