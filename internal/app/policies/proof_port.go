package policies

import (
	"context"
	"errors"
	"io"
)

var ErrProofNotFound = errors.New("policies: payment proof not found")

// StoredProof describes an uploaded payment proof.
type StoredProof struct {
	Ref         string `json:"ref"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ProofStore keeps payment proofs between upload and submission.
type ProofStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (StoredProof, error)
	// Get opens a stored proof. The caller closes the reader.
	Get(ctx context.Context, ref string) (io.ReadCloser, StoredProof, error)
}
