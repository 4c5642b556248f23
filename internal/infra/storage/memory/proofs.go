package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"storefront/internal/app/policies"
)

type storedBlob struct {
	meta policies.StoredProof
	body []byte
}

// ProofStore keeps uploaded proofs in memory.
type ProofStore struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob
}

func NewProofStore() *ProofStore {
	return &ProofStore{blobs: make(map[string]storedBlob)}
}

func (s *ProofStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (policies.StoredProof, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return policies.StoredProof{}, err
	}
	meta := policies.StoredProof{
		Ref:         key,
		URL:         "memory://" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = storedBlob{meta: meta, body: data}
	return meta, nil
}

func (s *ProofStore) Get(ctx context.Context, ref string) (io.ReadCloser, policies.StoredProof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[ref]
	if !ok {
		return nil, policies.StoredProof{}, policies.ErrProofNotFound
	}
	return io.NopCloser(bytes.NewReader(blob.body)), blob.meta, nil
}

var _ policies.ProofStore = (*ProofStore)(nil)
