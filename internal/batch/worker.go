package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"certgen/certificate-backend/internal/roster"
)

// Inbox subdirectories rosters are moved to once processed
const (
	DoneDir   = "done"
	FailedDir = "failed"
)

// WorkerConfig configures the roster worker
type WorkerConfig struct {
	InboxDir  string `json:"inbox_dir"`
	OutputDir string `json:"output_dir"`
	Schedule  string `json:"schedule"` // standard cron expression or @every descriptor
}

// Worker periodically renders every roster dropped into an inbox directory.
// Certificates from inbox/spring.csv land in <output>/spring/, and the
// roster is moved to inbox/done/ (or inbox/failed/) with a JSON report.
type Worker struct {
	runner *Runner
	config WorkerConfig
	cron   *cron.Cron
	logger *zap.Logger
	mu     sync.Mutex
}

// NewWorker validates the schedule and creates a worker
func NewWorker(runner *Runner, config WorkerConfig, logger *zap.Logger) (*Worker, error) {
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	return &Worker{
		runner: runner,
		config: config,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		logger: logger,
	}, nil
}

// Start schedules inbox scans until Stop is called
func (w *Worker) Start(ctx context.Context) error {
	for _, dir := range []string{w.config.InboxDir, filepath.Join(w.config.InboxDir, DoneDir), filepath.Join(w.config.InboxDir, FailedDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create inbox: %w", err)
		}
	}

	_, err := w.cron.AddFunc(w.config.Schedule, func() {
		if _, err := w.ProcessInbox(ctx); err != nil {
			w.logger.Error("Inbox scan failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule inbox scan: %w", err)
	}

	w.logger.Info("Starting roster worker",
		zap.String("inbox", w.config.InboxDir),
		zap.String("schedule", w.config.Schedule))
	w.cron.Start()
	return nil
}

// Stop waits for a running scan to finish
func (w *Worker) Stop() {
	w.logger.Info("Stopping roster worker")
	<-w.cron.Stop().Done()
}

// ProcessInbox renders every supported roster currently in the inbox and
// returns the number of rosters handled.
func (w *Worker) ProcessInbox(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := os.ReadDir(w.config.InboxDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read inbox: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && roster.Supported(e.Name()) && !strings.HasPrefix(e.Name(), ".") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	handled := 0
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return handled, err
		}
		w.processRoster(ctx, name)
		handled++
	}
	return handled, nil
}

func (w *Worker) processRoster(ctx context.Context, name string) {
	src := filepath.Join(w.config.InboxDir, name)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	logger := w.logger.With(zap.String("roster", name))

	reqs, err := roster.Read(src)
	if err != nil {
		logger.Error("Failed to read roster", zap.Error(err))
		w.archive(logger, src, FailedDir, map[string]string{"error": err.Error()})
		return
	}

	report, err := w.runner.RunTo(ctx, filepath.Join(w.config.OutputDir, base), reqs)
	if err != nil {
		logger.Error("Roster batch aborted", zap.Error(err))
		w.archive(logger, src, FailedDir, map[string]string{"error": err.Error()})
		return
	}

	dest := DoneDir
	if len(report.Failed()) > 0 {
		dest = FailedDir
	}
	w.archive(logger, src, dest, summarize(report))
}

// archive moves src into the given inbox subdirectory next to a JSON report.
func (w *Worker) archive(logger *zap.Logger, src, sub string, report any) {
	dir := filepath.Join(w.config.InboxDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Failed to create archive directory", zap.Error(err))
		return
	}

	name := filepath.Base(src)
	if data, err := json.MarshalIndent(report, "", "  "); err == nil {
		if err := os.WriteFile(filepath.Join(dir, name+".report.json"), data, 0o644); err != nil {
			logger.Warn("Failed to write roster report", zap.Error(err))
		}
	}
	if err := os.Rename(src, filepath.Join(dir, name)); err != nil {
		logger.Error("Failed to archive roster", zap.Error(err))
		return
	}
	logger.Info("Roster processed", zap.String("archived_to", sub))
}

type outcomeSummary struct {
	Name     string   `json:"name"`
	Path     string   `json:"path,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type reportSummary struct {
	RunID     string           `json:"run_id"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Outcomes  []outcomeSummary `json:"outcomes"`
}

func summarize(r *Report) reportSummary {
	s := reportSummary{
		RunID:     r.RunID.String(),
		Succeeded: r.Succeeded(),
		Failed:    len(r.Failed()),
	}
	for _, o := range r.Outcomes {
		out := outcomeSummary{Name: o.Name}
		if o.Err != nil {
			out.Error = o.Err.Error()
		} else {
			out.Path = o.Path
			out.Warnings = o.Result.WarningMessages()
		}
		s.Outcomes = append(s.Outcomes, out)
	}
	return s
}

// cronLogger routes cron's own logging through zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
