package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"certgen/certificate-backend/internal/certificate"
)

// Renderer is the part of certificate.Engine a batch needs
type Renderer interface {
	Render(ctx context.Context, dest string, req certificate.Request) (*certificate.Result, error)
}

// Config configures a Runner
type Config struct {
	OutputDir     string
	MaxConcurrent int
	RenderTimeout time.Duration
}

// DefaultConfig returns default batch configuration
func DefaultConfig() Config {
	return Config{
		OutputDir:     "output",
		MaxConcurrent: 4,
		RenderTimeout: time.Minute,
	}
}

// Outcome is the result of one certificate in a batch
type Outcome struct {
	Index    int                 `json:"index"`
	Name     string              `json:"name"`
	Path     string              `json:"path"`
	Result   *certificate.Result `json:"result,omitempty"`
	Err      error               `json:"-"`
	Duration time.Duration       `json:"duration"`
}

// Report summarises a batch run
type Report struct {
	RunID     uuid.UUID     `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// Succeeded counts the certificates that were written.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that produced no file.
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins every per-certificate error, or nil when the whole batch succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", o.Name, o.Err))
	}
	return errors.Join(errs...)
}

// Runner renders many certificates concurrently. Each render owns its own
// page, so the only shared state is the engine's read-only fonts.
type Runner struct {
	renderer Renderer
	config   Config
	logger   *zap.Logger
}

// NewRunner creates a batch runner
func NewRunner(renderer Renderer, config Config, logger *zap.Logger) *Runner {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{renderer: renderer, config: config, logger: logger}
}

// Run renders every request into the configured output directory. A failed
// render is recorded in its Outcome and does not stop the others; the
// returned error is only set when the output directory cannot be created or
// ctx ends.
func (r *Runner) Run(ctx context.Context, reqs []certificate.Request) (*Report, error) {
	return r.RunTo(ctx, r.config.OutputDir, reqs)
}

// RunTo is Run with an explicit output directory.
func (r *Runner) RunTo(ctx context.Context, outputDir string, reqs []certificate.Request) (*Report, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	report := &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, len(reqs)),
	}
	logger := r.logger.With(zap.String("run_id", report.RunID.String()))
	logger.Info("Starting certificate batch",
		zap.Int("count", len(reqs)),
		zap.Int("max_concurrent", r.config.MaxConcurrent),
		zap.String("output_dir", outputDir))

	names := newNamer()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.MaxConcurrent)

	for i, req := range reqs {
		path := filepath.Join(outputDir, names.next(req.RecipientName))
		report.Outcomes[i] = Outcome{Index: i, Name: req.RecipientName, Path: path}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Outcomes[i].Err = err
				return nil
			}
			r.render(gctx, logger, &report.Outcomes[i], req)
			return nil
		})
	}

	_ = g.Wait()
	report.Duration = time.Since(report.StartedAt)

	logger.Info("Certificate batch finished",
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", len(report.Failed())),
		zap.Duration("duration", report.Duration))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) render(ctx context.Context, logger *zap.Logger, out *Outcome, req certificate.Request) {
	if r.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RenderTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := r.renderer.Render(ctx, out.Path, req)
	out.Duration = time.Since(start)
	out.Result = result
	out.Err = err

	if err != nil {
		logger.Error("Certificate render failed",
			zap.Int("index", out.Index),
			zap.String("name", out.Name),
			zap.Error(err))
		return
	}
	for _, w := range result.Warnings {
		logger.Warn("Certificate rendered with warning",
			zap.String("path", out.Path),
			zap.String("asset", w.Asset),
			zap.Error(w))
	}
}

// FileName derives the output file name for a recipient, for example
// "Sachin Kumar" becomes "sachin_kumar_certificate.pdf".
func FileName(recipient string) string {
	return slug(recipient) + "_certificate.pdf"
}

func slug(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "recipient"
	}
	return out
}

// namer hands out file names that are unique within one run.
type namer struct {
	seen map[string]int
}

func newNamer() *namer {
	return &namer{seen: make(map[string]int)}
}

func (n *namer) next(recipient string) string {
	base := slug(recipient)
	n.seen[base]++
	if c := n.seen[base]; c > 1 {
		return fmt.Sprintf("%s_%d_certificate.pdf", base, c)
	}
	return FileName(recipient)
}
