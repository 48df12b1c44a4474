package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/kube-rca/incident-bot/internal/metrics"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestArchiveRunCycle(t *testing.T) {
	dir := t.TempDir()
	logFile := writeFile(t, dir, "incident_bot.log", "started\n")
	alerts := writeFile(t, dir, "alerts_processed.jsonl", `{"id":"1"}`+"\n")
	healing := writeFile(t, dir, "healing_actions.jsonl", "")

	objects := &fakeObjectStore{}
	m := metrics.New()
	svc := NewArchiveService(objects, "incident-bot-logs/", time.Minute, logFile, []string{alerts, healing}, m)
	svc.now = func() time.Time { return fixedNow }

	uploaded := svc.RunCycle(context.Background())

	assert.Equal(t, 2, uploaded)
	keys := objects.keys()
	sort.Strings(keys)
	assert.Equal(t, []string{
		"incident-bot-logs/data/20250314-092653-alerts_processed.jsonl",
		"incident-bot-logs/logs/20250314-092653-incident_bot.log",
	}, keys)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveUploads.WithLabelValues("logs", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveUploads.WithLabelValues("data", "success")))
}

func TestArchiveRunCycleSkipsMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "alerts_processed.jsonl", "")

	objects := &fakeObjectStore{}
	svc := NewArchiveService(objects, "p/", time.Minute, filepath.Join(dir, "missing.log"), []string{empty}, nil)

	assert.Zero(t, svc.RunCycle(context.Background()))
	assert.Empty(t, objects.keys())
}

func TestArchiveRunCycleContinuesOnError(t *testing.T) {
	dir := t.TempDir()
	logFile := writeFile(t, dir, "incident_bot.log", "x")
	alerts := writeFile(t, dir, "alerts_processed.jsonl", "y")

	objects := &fakeObjectStore{err: errors.New("access denied")}
	m := metrics.New()
	svc := NewArchiveService(objects, "p/", time.Minute, logFile, []string{alerts}, m)

	assert.Zero(t, svc.RunCycle(context.Background()))
	assert.Len(t, objects.keys(), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveUploads.WithLabelValues("data", "error")))
}

func TestArchiveDisabled(t *testing.T) {
	svc := NewArchiveService(nil, "p/", time.Minute, "", nil, nil)
	assert.False(t, svc.Enabled())
	assert.Zero(t, svc.RunCycle(context.Background()))
	svc.UploadAlertRecord(model.AlertRecord{})
	assert.NoError(t, svc.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Run(ctx)
}

func TestArchiveRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	logFile := writeFile(t, dir, "incident_bot.log", "x")

	objects := &fakeObjectStore{}
	svc := NewArchiveService(objects, "p/", time.Hour, logFile, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(objects.keys()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("archive loop did not stop after cancel")
	}
}

func TestArchiveUploadAlertRecord(t *testing.T) {
	objects := &fakeObjectStore{}
	svc := NewArchiveService(objects, "incident-bot-logs/", time.Minute, "", nil, nil)
	svc.now = func() time.Time { return fixedNow }

	record := model.NewAlertRecord(fixedNow, cpuAlert("HighCPUUsage"), model.Suggestion{Text: "scale", Confidence: 0.9}, model.HealingOutcome{Result: "ok", Success: true})
	svc.UploadAlertRecord(record)
	require.NoError(t, svc.Wait(context.Background()))

	require.Len(t, objects.calls, 1)
	call := objects.calls[0]
	assert.Equal(t, "incident-bot-logs/alerts/20250314-092653-highcpuusage.json", call.key)
	assert.Equal(t, "application/json", call.contentType)

	var decoded model.AlertRecord
	require.NoError(t, json.Unmarshal(call.data, &decoded))
	assert.Equal(t, record.ID, decoded.ID)
	assert.Equal(t, "scale", decoded.Suggestion)
}
