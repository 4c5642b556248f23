package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"storefront/internal/app/commands"
	"storefront/internal/app/dto"
	"storefront/internal/app/handlers/checkout"
)

type CheckoutHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
	// MaxUpload bounds the multipart body; the proof size limit itself is
	// enforced by the command handler.
	MaxUpload int64
}

func (h CheckoutHandler) AttachProof(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	if h.MaxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUpload)
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	cmd := checkout.AttachProofCommand{
		SessionID:   p.SessionID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	res, err := commands.Dispatch[checkout.AttachProofCommand, *dto.ProofUpload](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h CheckoutHandler) SubmitPayment(c *gin.Context) {
	p, ok := requireSession(c)
	if !ok {
		return
	}
	cmd := checkout.SubmitPaymentCommand{
		SessionID:      p.SessionID,
		ClientName:     p.Name,
		ClientUsername: p.Username,
		RequestKey:     c.GetHeader("Idempotency-Key"),
	}
	res, err := commands.Dispatch[checkout.SubmitPaymentCommand, *dto.PaymentReceipt](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusAccepted, res)
}

var _ CheckoutHTTP = CheckoutHandler{}
