package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	st, err := New(filepath.Join(dir, "alerts_processed.jsonl"), filepath.Join(dir, "healing_actions.jsonl"))
	require.NoError(t, err)
	return st
}

func alertRecord(name string) model.AlertRecord {
	info := model.AlertInfo{
		Status:      model.AlertStatusFiring,
		Labels:      map[string]string{"alertname": name},
		Annotations: map[string]string{},
	}
	return model.NewAlertRecord(time.Now(), info, model.Suggestion{Text: "line1\nline2", Confidence: 0.9}, model.HealingOutcome{Result: "ok", Success: true})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestNewCreatesEmptyFiles(t *testing.T) {
	st := newTestStore(t)
	for _, path := range st.Paths() {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Zero(t, fi.Size())
	}
}

func TestNewFailsOnMissingDir(t *testing.T) {
	_, err := New("/nonexistent/dir/a.jsonl", "/nonexistent/dir/b.jsonl")
	assert.Error(t, err)
}

func TestAppendAlertWritesOneLinePerRecord(t *testing.T) {
	st := newTestStore(t)

	first := alertRecord("HighCPUUsage")
	second := alertRecord("HighCPUUsage")
	require.NoError(t, st.AppendAlert(first))
	require.NoError(t, st.AppendAlert(second))

	lines := readLines(t, st.Paths()[0])
	require.Len(t, lines, 2)

	var decoded model.AlertRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.Equal(t, first.ID, decoded.ID)
	assert.Equal(t, "line1\nline2", decoded.Suggestion)
	assert.Equal(t, "HighCPUUsage", decoded.AlertInfo.Name())
}

func TestAppendHealingAction(t *testing.T) {
	st := newTestStore(t)
	info := model.AlertInfo{Labels: map[string]string{"alertname": "LowDiskSpace"}}
	rec := model.NewHealingActionRecord(time.Now(), info, 0.95, model.HealingOutcome{Result: "cleaned", Success: true})

	require.NoError(t, st.AppendHealingAction(rec))

	lines := readLines(t, st.Paths()[1])
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"action":"cleaned"`)
	assert.Empty(t, readLines(t, st.Paths()[0]))
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	st := newTestStore(t)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, st.AppendAlert(alertRecord(fmt.Sprintf("Alert-%d-%d", w, i))))
			}
		}(w)
	}
	wg.Wait()

	lines := readLines(t, st.Paths()[0])
	require.Len(t, lines, writers*perWriter)
	for _, line := range lines {
		var rec model.AlertRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
	}
}

func TestReadAlertRecordsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, st.AppendAlert(alertRecord(name)))
	}

	records, err := st.ReadAlertRecords(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C", records[0].AlertInfo.Name())
	assert.Equal(t, "B", records[1].AlertInfo.Name())

	all, err := st.ReadAlertRecords(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
