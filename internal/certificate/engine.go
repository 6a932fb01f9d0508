package certificate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"certgen/certificate-backend/internal/assets"
	"certgen/certificate-backend/pkg/pdf"
)

// Engine renders certificates. It holds no per-render state, so one engine
// may serve concurrent renders.
type Engine struct {
	pages           PageFactory
	loader          AssetLoader
	assets          AssetPaths
	defaultTemplate string
	logger          *zap.Logger
}

// NewEngine creates an engine. Fonts are registered once by pages.
func NewEngine(pages PageFactory, loader AssetLoader, paths AssetPaths, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pages.FontError(); err != nil {
		logger.Warn("Bundled fonts unavailable, using fallback family",
			zap.String("family", pdf.FallbackFamily),
			zap.Error(err))
	}
	return &Engine{
		pages:           pages,
		loader:          loader,
		assets:          paths,
		defaultTemplate: DefaultTemplate,
		logger:          logger,
	}
}

// SetDefaultTemplate changes the variant used by requests that name none.
func (e *Engine) SetDefaultTemplate(name string) error {
	if _, ok := TemplateByName(name); !ok {
		return fmt.Errorf("%w: unknown template %q", ErrInvalidRequest, name)
	}
	e.defaultTemplate = name
	return nil
}

// Render draws req and writes the sealed page to dest. Only a failure to
// write dest is returned as an error; missing assets and truncated text are
// reported in Result.Warnings.
func (e *Engine) Render(ctx context.Context, dest string, req Request) (*Result, error) {
	page, result, err := e.compose(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := page.SaveAs(dest); err != nil {
		e.logger.Error("Failed to write certificate", zap.String("path", dest), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderIO, dest, err)
	}
	result.Path = dest

	e.logger.Info("Certificate created",
		zap.String("path", dest),
		zap.String("template", result.Template),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// RenderTo is Render for an arbitrary writer.
func (e *Engine) RenderTo(ctx context.Context, w io.Writer, req Request) (*Result, error) {
	page, result, err := e.compose(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := page.Output(w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderIO, err)
	}
	return result, nil
}

func (e *Engine) compose(ctx context.Context, req Request) (Page, *Result, error) {
	if strings.TrimSpace(req.Template) == "" {
		req.Template = e.defaultTemplate
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	spec, _ := TemplateByName(req.Template)

	result := &Result{Template: spec.Name}
	if err := e.pages.FontError(); err != nil {
		result.Warnings = append(result.Warnings, Warning{Kind: ErrFontRegistration, Err: err})
	}

	resolved := e.loadAssets(ctx, req, result)

	page := e.pages.NewPage(spec.Sheet, pdf.DocumentOptions{
		Title:   UpperTitle(req.CourseTitle) + " - " + CapitalizeWords(req.RecipientName),
		Author:  req.IssuerName,
		Creator: "certgen",
	})

	start := time.Now()
	newLayout(spec, page, req, resolved, result, e.logger.With(zap.String("template", spec.Name))).run()
	e.logger.Debug("Layout complete",
		zap.String("template", spec.Name),
		zap.Int("lines_drawn", result.LinesDrawn),
		zap.Duration("duration", time.Since(start)))

	return page, result, nil
}

func (e *Engine) loadAssets(ctx context.Context, req Request, result *Result) resolvedAssets {
	var res resolvedAssets
	res.watermark = e.loadOptional(ctx, e.assets.Watermark, result)
	res.logo = e.loadOptional(ctx, e.assets.Logo, result)
	res.frame = e.loadOptional(ctx, e.assets.Frame, result)
	if req.SignatureImage != "" {
		res.signature = e.loadOptional(ctx, req.SignatureImage, result)
		res.remoteSig = assets.IsRemote(req.SignatureImage)
	}
	return res
}

// loadOptional returns nil for an empty ref or any failure, recording a
// warning for the latter.
func (e *Engine) loadOptional(ctx context.Context, ref string, result *Result) *pdf.Image {
	if ref == "" {
		return nil
	}
	img, err := e.loader.Load(ctx, ref)
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{Kind: classify(err), Asset: ref, Err: err})
		e.logger.Warn("Asset unavailable, skipping", zap.String("asset", ref), zap.Error(err))
		return nil
	}
	return img
}
