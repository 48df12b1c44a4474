package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantText   string
		wantConfid float64
	}{
		{
			name:       "leading confidence line",
			in:         "CONFIDENCE: 0.85\n1. Cause: load\n2. Scale out",
			wantText:   "1. Cause: load\n2. Scale out",
			wantConfid: 0.85,
		},
		{
			name:       "blank lines after confidence are trimmed",
			in:         "CONFIDENCE: 0.7\n\n\nRestart the pod",
			wantText:   "Restart the pod",
			wantConfid: 0.7,
		},
		{
			name:       "no confidence line",
			in:         "  Just do something\nelse\n",
			wantText:   "  Just do something\nelse\n",
			wantConfid: 0,
		},
		{
			name:       "out of range collapses to zero",
			in:         "CONFIDENCE: 1.5\nbody",
			wantText:   "body",
			wantConfid: 0,
		},
		{
			name:       "integer one",
			in:         "CONFIDENCE: 1\nbody",
			wantText:   "body",
			wantConfid: 1,
		},
		{
			name:       "only first match removed",
			in:         "CONFIDENCE: 0.6\nbody\nCONFIDENCE: 0.9\n",
			wantText:   "body\nCONFIDENCE: 0.9\n",
			wantConfid: 0.6,
		},
		{
			name:       "confidence line at end without newline",
			in:         "body\nCONFIDENCE: 0.4",
			wantText:   "body\n",
			wantConfid: 0.4,
		},
		{
			name:       "confidence value on a later line is not matched",
			in:         "Cause: CONFIDENCE:\n\n0.9 load\nStep 1: scale\n",
			wantText:   "Cause: CONFIDENCE:\n\n0.9 load\nStep 1: scale\n",
			wantConfid: 0,
		},
		{
			name:       "text above a mid-body confidence line is kept",
			in:         "Summary\n\nCONFIDENCE: 0.7\n\nStep 1",
			wantText:   "Summary\n\n\nStep 1",
			wantConfid: 0.7,
		},
		{
			name:       "unparseable value",
			in:         "CONFIDENCE: high\nbody",
			wantText:   "CONFIDENCE: high\nbody",
			wantConfid: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSuggestion(tt.in)
			assert.Equal(t, tt.wantText, got.Text)
			assert.InDelta(t, tt.wantConfid, got.Confidence, 1e-9)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestBuildPromptIncludesAlert(t *testing.T) {
	prompt := BuildPrompt(model.AlertInfo{
		Status: model.AlertStatusFiring,
		Labels: map[string]string{"alertname": "HighCPUUsage"},
	})
	assert.Contains(t, prompt, `"alertname": "HighCPUUsage"`)
	assert.Contains(t, prompt, `"status": "firing"`)
	assert.Contains(t, prompt, `CONFIDENCE: 0.8`)
}

func TestSuggestDisabled(t *testing.T) {
	svc := NewSuggestionService(nil, time.Second, nil)
	got := svc.Suggest(context.Background(), model.AlertInfo{})
	assert.Equal(t, "AI suggestions disabled. Set GEMINI_API_KEY environment variable.", got.Text)
	assert.Zero(t, got.Confidence)
	assert.False(t, svc.Enabled())
}

func TestSuggestGeneratorError(t *testing.T) {
	svc := NewSuggestionService(&fakeGenerator{err: errors.New("quota exceeded")}, time.Second, nil)
	got := svc.Suggest(context.Background(), model.AlertInfo{})
	assert.Equal(t, "Error generating AI suggestion: quota exceeded", got.Text)
	assert.Zero(t, got.Confidence)
}

func TestSuggestEmptyResponse(t *testing.T) {
	svc := NewSuggestionService(&fakeGenerator{text: "  \n"}, time.Second, nil)
	got := svc.Suggest(context.Background(), model.AlertInfo{})
	assert.Contains(t, got.Text, "Error generating AI suggestion")
	assert.Zero(t, got.Confidence)
}

func TestSuggestTimeout(t *testing.T) {
	svc := NewSuggestionService(blockingGenerator{}, 20*time.Millisecond, nil)
	got := svc.Suggest(context.Background(), model.AlertInfo{})
	assert.Contains(t, got.Text, context.DeadlineExceeded.Error())
	assert.Zero(t, got.Confidence)
}

func TestSuggestParsesResponse(t *testing.T) {
	gen := &fakeGenerator{text: "CONFIDENCE: 0.92\nScale the deployment"}
	svc := NewSuggestionService(gen, time.Second, nil)

	got := svc.Suggest(context.Background(), model.AlertInfo{Labels: map[string]string{"alertname": "HighCPUUsage"}})
	assert.Equal(t, "Scale the deployment", got.Text)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "HighCPUUsage")
}
