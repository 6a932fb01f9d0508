package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"certgen/certificate-backend/internal/assets"
	"certgen/certificate-backend/internal/batch"
	"certgen/certificate-backend/internal/certificate"
	"certgen/certificate-backend/internal/config"
	"certgen/certificate-backend/pkg/pdf"
	"certgen/certificate-backend/pkg/storage"
)

// App holds the components every entry point shares
type App struct {
	Config  *config.Config
	Engine  *certificate.Engine
	Service *certificate.Service
	Runner  *batch.Runner
	S3      storage.S3Client
	Logger  *zap.Logger
}

// New wires fonts, the asset loader, the render engine, the publishing
// service and the batch runner from cfg. The S3 client is only created when
// a bucket or endpoint is configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var s3 storage.S3Client
	if cfg.Storage.PublishingEnabled() || cfg.Storage.Endpoint != "" {
		client, err := storage.NewS3Client(ctx, storage.S3Options{
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		s3 = client
	}

	gen := pdf.NewGenerator(pdf.FontConfig{
		Family:  cfg.Assets.FontFamily,
		Dir:     cfg.Assets.FontDir,
		Regular: cfg.Assets.Regular,
		Bold:    cfg.Assets.Bold,
		Italic:  cfg.Assets.Italic,
	})

	loader := assets.NewLoader(&http.Client{Timeout: cfg.Render.RemoteTimeout.Std()}, s3, logger.Named("assets"))

	engine := certificate.NewEngine(certificate.PDFPages(gen), loader, certificate.AssetPaths{
		Watermark: cfg.Assets.Watermark,
		Logo:      cfg.Assets.Logo,
		Frame:     cfg.Assets.Frame,
	}, logger.Named("certificate"))
	if cfg.Render.DefaultTemplate != "" {
		if err := engine.SetDefaultTemplate(cfg.Render.DefaultTemplate); err != nil {
			return nil, err
		}
	}

	service := certificate.NewService(engine, s3, certificate.PublishOptions{
		Bucket:        cfg.Storage.Bucket,
		Prefix:        cfg.Storage.Prefix,
		PresignExpiry: cfg.Storage.PresignExpiry.Std(),
	}, logger.Named("service"))

	runner := batch.NewRunner(engine, batch.Config{
		OutputDir:     cfg.Render.OutputDir,
		MaxConcurrent: cfg.Batch.MaxConcurrent,
		RenderTimeout: cfg.Batch.RenderTimeout.Std(),
	}, logger.Named("batch"))

	return &App{
		Config:  cfg,
		Engine:  engine,
		Service: service,
		Runner:  runner,
		S3:      s3,
		Logger:  logger,
	}, nil
}
