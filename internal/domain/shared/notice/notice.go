// Package notice models the short-lived user-facing messages (toasts) an
// aggregate emits alongside its state changes.
package notice

import "time"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notice struct {
	ID      int64
	Level   Level
	Message string
	At      time.Time
}

// Board queues notices until they are delivered to the client.
type Board struct {
	seq     int64
	pending []Notice
}

func (b *Board) Post(level Level, message string, at time.Time) {
	b.seq++
	b.pending = append(b.pending, Notice{ID: b.seq, Level: level, Message: message, At: at.UTC()})
}

func (b *Board) PendingNotices() []Notice {
	return append([]Notice(nil), b.pending...)
}

// DrainNotices hands over queued notices; each notice is delivered once.
func (b *Board) DrainNotices() []Notice {
	out := b.pending
	b.pending = nil
	return out
}

func (b Board) CloneNotices() Board {
	return Board{seq: b.seq, pending: append([]Notice(nil), b.pending...)}
}
