package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHelpers(t *testing.T) {
	m := New()

	m.ObserveAlert(true)
	m.ObserveAlert(true)
	m.ObserveAlert(false)
	m.ObserveHealing("high_cpu", true)
	m.ObserveUpload("data", nil)
	m.ObserveUpload("data", errors.New("boom"))
	m.ObserveNotification("sent")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AlertsProcessed.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsProcessed.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealingActions.WithLabelValues("high_cpu", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchiveUploads.WithLabelValues("data", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("sent")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAlert(true)
		m.ObserveHealing("low_disk", false)
		m.ObserveUpload("logs", nil)
		m.ObserveNotification("skipped")
		m.ObserveConfidence(0.5)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveConfidence(0.9)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "incident_bot_suggestion_confidence_count 1")
}
