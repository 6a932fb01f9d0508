package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"certgen/certificate-backend/pkg/storage"
)

// ErrPublishingDisabled is returned by Publish when no bucket is configured.
var ErrPublishingDisabled = errors.New("certificate publishing is not configured")

// Renderer is the part of Engine the service depends on
type Renderer interface {
	RenderTo(ctx context.Context, w io.Writer, req Request) (*Result, error)
}

// Publication describes a certificate uploaded to object storage
type Publication struct {
	ID       uuid.UUID `json:"id"`
	Bucket   string    `json:"bucket"`
	Key      string    `json:"key"`
	URL      string    `json:"url"`
	Template string    `json:"template"`
	Warnings []string  `json:"warnings"`
}

// PublishOptions configures where rendered certificates are stored
type PublishOptions struct {
	Bucket        string
	Prefix        string
	PresignExpiry time.Duration
}

type Service struct {
	renderer Renderer
	s3       storage.S3Client
	opts     PublishOptions
	logger   *zap.Logger
}

// NewService creates the certificate service. s3 may be nil when publishing
// is not used.
func NewService(renderer Renderer, s3 storage.S3Client, opts PublishOptions, logger *zap.Logger) *Service {
	if opts.Prefix == "" {
		opts.Prefix = "certificates"
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{renderer: renderer, s3: s3, opts: opts, logger: logger}
}

// Render returns the finished PDF bytes.
func (s *Service) Render(ctx context.Context, req Request) ([]byte, *Result, error) {
	var buf bytes.Buffer
	result, err := s.renderer.RenderTo(ctx, &buf, req)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), result, nil
}

// Publish renders req and uploads it to the configured bucket.
func (s *Service) Publish(ctx context.Context, req Request) (*Publication, error) {
	if s.s3 == nil || s.opts.Bucket == "" {
		return nil, ErrPublishingDisabled
	}

	data, result, err := s.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := s.GenerateKey(result.Template, id)
	if err := s.s3.Upload(ctx, s.opts.Bucket, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to publish certificate: %w", err)
	}

	url, err := s.s3.GetPresignedURL(ctx, s.opts.Bucket, key, s.opts.PresignExpiry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Certificate published",
		zap.String("id", id.String()),
		zap.String("bucket", s.opts.Bucket),
		zap.String("key", key))

	return &Publication{
		ID:       id,
		Bucket:   s.opts.Bucket,
		Key:      key,
		URL:      url,
		Template: result.Template,
		Warnings: result.WarningMessages(),
	}, nil
}

func (s *Service) GenerateKey(template string, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s.pdf", s.opts.Prefix, template, id)
}
