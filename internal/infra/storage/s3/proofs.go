package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storefront/internal/app/policies"
)

// ProofStore keeps payment proofs in an S3-compatible bucket. The bucket stays
// private; the stored URL is for operators with bucket access.
type ProofStore struct {
	bucket         string
	publicBaseURL  string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewProofStore(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*ProofStore, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	client, err := minio.New(hostOf(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = cleanEndpoint
	}
	return &ProofStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        client,
		logger:        logger,
	}, nil
}

func (s *ProofStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (policies.StoredProof, error) {
	if body == nil {
		return policies.StoredProof{}, errors.New("s3: body is required")
	}
	key = cleanKey(key)
	if key == "" {
		return policies.StoredProof{}, errors.New("s3: object key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return policies.StoredProof{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return policies.StoredProof{}, fmt.Errorf("s3: put object: %w", err)
	}
	proof := policies.StoredProof{
		Ref:         key,
		URL:         s.objectURL(key),
		ContentType: contentType,
		Size:        info.Size,
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "payment proof stored", "bucket", s.bucket, "key", key, "size", info.Size)
	}
	return proof, nil
}

func (s *ProofStore) Get(ctx context.Context, ref string) (io.ReadCloser, policies.StoredProof, error) {
	key := cleanKey(ref)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, policies.StoredProof{}, fmt.Errorf("s3: get object: %w", err)
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, policies.StoredProof{}, policies.ErrProofNotFound
		}
		return nil, policies.StoredProof{}, fmt.Errorf("s3: stat object: %w", err)
	}
	return obj, policies.StoredProof{
		Ref:         key,
		URL:         s.objectURL(key),
		ContentType: stat.ContentType,
		Size:        stat.Size,
	}, nil
}

// Ping reports whether the bucket is reachable.
func (s *ProofStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *ProofStore) ensureBucket(ctx context.Context) error {
	s.bucketInitOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return s.bucketInitErr
}

func (s *ProofStore) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
}

func cleanKey(key string) string {
	return strings.Trim(strings.TrimSpace(key), "/")
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.ProofStore = (*ProofStore)(nil)
