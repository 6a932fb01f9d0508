package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"certgen/certificate-backend/internal/certificate"
)

// fakeRenderer writes a marker file and tracks how many renders overlap.
type fakeRenderer struct {
	mu       sync.Mutex
	fail     map[string]error
	delay    time.Duration
	active   atomic.Int32
	maxSeen  atomic.Int32
	rendered []string
}

func (f *fakeRenderer) Render(ctx context.Context, dest string, req certificate.Request) (*certificate.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := f.fail[req.RecipientName]; err != nil {
		return nil, err
	}
	if err := os.WriteFile(dest, []byte("%PDF-1.3"), 0o644); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.rendered = append(f.rendered, dest)
	f.mu.Unlock()
	return &certificate.Result{Path: dest, Template: certificate.DefaultTemplate}, nil
}

func requests(names ...string) []certificate.Request {
	reqs := make([]certificate.Request, len(names))
	for i, n := range names {
		reqs[i] = certificate.Request{CourseTitle: "Certificate of Completion", RecipientName: n}
	}
	return reqs
}

func TestRunnerRendersEveryRequest(t *testing.T) {
	dir := t.TempDir()
	renderer := &fakeRenderer{delay: 5 * time.Millisecond}
	runner := NewRunner(renderer, Config{OutputDir: dir, MaxConcurrent: 2}, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), requests("Sachin Kumar", "John Doe", "Jane Doe", "Ravi Teja", "Anu K"))

	require.NoError(t, err)
	assert.Equal(t, 5, report.Succeeded())
	assert.NoError(t, report.Err())
	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.LessOrEqual(t, renderer.maxSeen.Load(), int32(2))
	assert.FileExists(t, filepath.Join(dir, "sachin_kumar_certificate.pdf"))
	assert.Len(t, renderer.rendered, 5)
}

func TestRunnerIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	renderer := &fakeRenderer{fail: map[string]error{"John Doe": certificate.ErrRenderIO}}
	runner := NewRunner(renderer, Config{OutputDir: dir, MaxConcurrent: 3}, zaptest.NewLogger(t))

	report, err := runner.Run(context.Background(), requests("Sachin Kumar", "John Doe", "Jane Doe"))

	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.ErrorIs(t, report.Err(), certificate.ErrRenderIO)
	assert.NoFileExists(t, filepath.Join(dir, "john_doe_certificate.pdf"))
	assert.FileExists(t, filepath.Join(dir, "jane_doe_certificate.pdf"))
}

func TestRunnerDeduplicatesFileNames(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(&fakeRenderer{}, Config{OutputDir: dir, MaxConcurrent: 4}, nil)

	report, err := runner.Run(context.Background(), requests("Sachin Kumar", "sachin  kumar", "SACHIN KUMAR"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sachin_kumar_certificate.pdf"), report.Outcomes[0].Path)
	assert.Equal(t, filepath.Join(dir, "sachin_kumar_2_certificate.pdf"), report.Outcomes[1].Path)
	assert.Equal(t, filepath.Join(dir, "sachin_kumar_3_certificate.pdf"), report.Outcomes[2].Path)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(&fakeRenderer{delay: time.Second}, Config{OutputDir: t.TempDir(), MaxConcurrent: 1}, nil)

	report, err := runner.Run(ctx, requests("Sachin Kumar", "John Doe"))

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Succeeded())
	assert.True(t, errors.Is(report.Outcomes[0].Err, context.Canceled))
}

func TestRunnerOutputDirUnavailable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewRunner(&fakeRenderer{}, Config{OutputDir: filepath.Join(file, "out")}, nil).
		Run(context.Background(), requests("Sachin Kumar"))

	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "sachin_kumar_certificate.pdf", FileName("Sachin Kumar"))
	assert.Equal(t, "jane_o_neil_certificate.pdf", FileName("  Jane O'Neil "))
	assert.Equal(t, "émile_zola_certificate.pdf", FileName("Émile Zola"))
	assert.Equal(t, "recipient_certificate.pdf", FileName("../"))
}
