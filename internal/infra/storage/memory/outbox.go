package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "storefront/internal/app/outbox"
)

// Outbox buffers records until Flush, which logs and discards them. It stands
// in for the broker when none is configured.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	flushed []appoutbox.EventRecord
	logger  *slog.Logger
}

func NewOutbox(logger *slog.Logger) *Outbox {
	return &Outbox{logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range o.records {
		if o.logger != nil {
			o.logger.DebugContext(ctx, "event published", "event", rec.Name, "aggregate", rec.Aggregate, "id", rec.ID)
		}
	}
	o.flushed = append(o.flushed, o.records...)
	o.records = nil
	return nil
}

// Published returns the names of flushed events in order.
func (o *Outbox) Published() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.flushed))
	for _, rec := range o.flushed {
		names = append(names, rec.Name)
	}
	return names
}

// Pending returns the records added since the last flush.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
