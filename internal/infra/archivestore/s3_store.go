package archivestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/ai-astrology/internal/domain/history"
)

// S3Store keeps archived reports as JSON objects in an S3 compatible bucket
// (Cloudflare R2, MinIO). Expiry is left to bucket lifecycle rules.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// S3Config holds connection settings.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// NewS3Store constructs the storage adapter.
func NewS3Store(cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "reports"
	}
	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		logger: logger.With("component", "archivestore.s3"),
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// Save uploads the report. ttl is ignored.
func (s *S3Store) Save(ctx context.Context, record history.ArchivedReport, _ time.Duration) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode archived report: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.objectKey(record.ID), bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put archived report: %w", err)
	}
	s.logger.Debug("report archived", "id", record.ID, "bytes", len(payload))
	return nil
}

// Get downloads a report.
func (s *S3Store) Get(ctx context.Context, id string) (history.ArchivedReport, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		return history.ArchivedReport{}, s.translate(err)
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return history.ArchivedReport{}, s.translate(err)
	}
	payload, err := io.ReadAll(obj)
	if err != nil {
		return history.ArchivedReport{}, s.translate(err)
	}
	var record history.ArchivedReport
	if err := json.Unmarshal(payload, &record); err != nil {
		return history.ArchivedReport{}, fmt.Errorf("decode archived report: %w", err)
	}
	return record, nil
}

func (s *S3Store) translate(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound {
		return history.ErrNotFound
	}
	return err
}

func (s *S3Store) objectKey(id string) string {
	return s.prefix + "/" + id + ".json"
}

var _ history.Archive = (*S3Store)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
