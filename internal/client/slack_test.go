package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kube-rca/incident-bot/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSlackPost(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "server-error", status: http.StatusInternalServerError, wantErr: true},
		{name: "not-found", status: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SlackMessage
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("ok"))
			}))
			defer srv.Close()

			c := NewSlackClient(config.SlackConfig{WebhookURL: srv.URL})
			err := c.Post(context.Background(), "*ALERT: HighCPUUsage*")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "*ALERT: HighCPUUsage*", got.Text)
			assert.True(t, got.Mrkdwn)
		})
	}
}

func TestSlackPostNotConfigured(t *testing.T) {
	c := NewSlackClient(config.SlackConfig{})
	assert.False(t, c.IsConfigured())
	assert.Error(t, c.Post(context.Background(), "hello"))
}

func TestSlackPostUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewSlackClient(config.SlackConfig{WebhookURL: url})
	assert.Error(t, c.Post(context.Background(), "hello"))
}
