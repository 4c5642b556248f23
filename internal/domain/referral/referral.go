// Package referral links clients to the worker whose invite link brought
// them. The link is what credits a worker on every later order.
package referral

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrCodeRequired    = errors.New("referral: code is required")
	ErrClientRequired  = errors.New("referral: client telegram id is required")
	ErrUnknownCode     = errors.New("referral: unknown referral code")
	ErrAlreadyReferred = errors.New("referral: client is already linked to a worker")
)

// Client is the Telegram user who opened an invite link.
type Client struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// Registration links Client to the worker owning Code. A client is linked at
// most once; the first worker keeps the credit.
type Registration struct {
	Code   string
	Client Client
	At     time.Time
}

func NewRegistration(code string, c Client, now time.Time) (Registration, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Registration{}, ErrCodeRequired
	}
	if c.TelegramID <= 0 {
		return Registration{}, ErrClientRequired
	}
	c.Username = strings.TrimPrefix(strings.TrimSpace(c.Username), "@")
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	return Registration{Code: code, Client: c, At: now.UTC()}, nil
}

// Registry stores registrations. Register returns ErrUnknownCode when no
// worker owns the code and ErrAlreadyReferred when the client is linked.
type Registry interface {
	Register(ctx context.Context, r Registration) error
}
