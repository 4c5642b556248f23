package checkout

import (
	"io"

	"storefront/internal/app/dto"
)

const (
	attachProofKey   = "checkout.proof.attach"
	submitPaymentKey = "checkout.payment.submit"
)

// AttachProofCommand uploads the payment screenshot for the session's booking.
type AttachProofCommand struct {
	SessionID   string `validate:"required"`
	FileName    string `validate:"max=255"`
	ContentType string `validate:"required"`
	Size        int64  `validate:"gt=0"`
	Body        io.Reader
}

func (AttachProofCommand) Key() string { return attachProofKey }

// SubmitPaymentCommand delivers the confirmed booking to the operators.
type SubmitPaymentCommand struct {
	SessionID      string `validate:"required"`
	ClientName     string `validate:"max=128"`
	ClientUsername string `validate:"max=64"`
	RequestKey     string `validate:"max=128"`
}

func (SubmitPaymentCommand) Key() string          { return submitPaymentKey }
func (SubmitPaymentCommand) ResultPrototype() any { return &dto.PaymentReceipt{} }

// IdempotencyKey is scoped to the session so two sessions reusing a header
// value never share a stored receipt.
func (c SubmitPaymentCommand) IdempotencyKey() string {
	if c.RequestKey == "" {
		return ""
	}
	return c.SessionID + ":" + c.RequestKey
}
