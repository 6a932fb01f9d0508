package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"certgen/certificate-backend/internal/certificate"
)

func newTestWorker(t *testing.T, renderer Renderer) (*Worker, string, string) {
	t.Helper()
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	output := filepath.Join(root, "output")
	require.NoError(t, os.MkdirAll(inbox, 0o755))

	runner := NewRunner(renderer, Config{OutputDir: output, MaxConcurrent: 2}, zaptest.NewLogger(t))
	w, err := NewWorker(runner, WorkerConfig{InboxDir: inbox, OutputDir: output, Schedule: "@every 1h"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return w, inbox, output
}

func TestWorkerProcessesInbox(t *testing.T) {
	w, inbox, output := newTestWorker(t, &fakeRenderer{})
	csv := "course_title,name\nCertificate of Completion,Sachin Kumar\nCertificate of Completion,Jane Doe\n"
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "spring.csv"), []byte(csv), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("ignored"), 0o644))

	n, err := w.ProcessInbox(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(output, "spring", "sachin_kumar_certificate.pdf"))
	assert.FileExists(t, filepath.Join(output, "spring", "jane_doe_certificate.pdf"))
	assert.NoFileExists(t, filepath.Join(inbox, "spring.csv"))
	assert.FileExists(t, filepath.Join(inbox, DoneDir, "spring.csv"))
	assert.FileExists(t, filepath.Join(inbox, "notes.txt"))

	data, err := os.ReadFile(filepath.Join(inbox, DoneDir, "spring.csv.report.json"))
	require.NoError(t, err)
	var summary reportSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 2, summary.Succeeded)

	n, err = w.ProcessInbox(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWorkerArchivesFailures(t *testing.T) {
	renderer := &fakeRenderer{fail: map[string]error{"Jane Doe": certificate.ErrRenderIO}}
	w, inbox, _ := newTestWorker(t, renderer)
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "a.csv"), []byte("course_title\nCertificate\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "b.csv"), []byte("course_title,name\nCertificate,Jane Doe\n"), 0o644))

	n, err := w.ProcessInbox(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(inbox, FailedDir, "a.csv"))
	assert.FileExists(t, filepath.Join(inbox, FailedDir, "b.csv"))

	data, err := os.ReadFile(filepath.Join(inbox, FailedDir, "b.csv.report.json"))
	require.NoError(t, err)
	var summary reportSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Outcomes[0].Error, certificate.ErrRenderIO.Error())
}

func TestNewWorkerRejectsBadSchedule(t *testing.T) {
	_, err := NewWorker(NewRunner(&fakeRenderer{}, DefaultConfig(), nil), WorkerConfig{Schedule: "every so often"}, nil)
	assert.Error(t, err)
}

func TestWorkerStartStop(t *testing.T) {
	w, inbox, _ := newTestWorker(t, &fakeRenderer{})

	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	assert.DirExists(t, filepath.Join(inbox, DoneDir))
	assert.DirExists(t, filepath.Join(inbox, FailedDir))
}
