package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/glmetrics/internal/display"
	"github.com/ethpandaops/glmetrics/internal/instrument"
	"github.com/ethpandaops/glmetrics/internal/metrics"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	return log
}

func startHealth(t *testing.T) *HealthMetrics {
	t.Helper()

	h := NewHealthMetrics(testLog(), HealthConfig{
		Enabled: true,
		Addr:    "127.0.0.1:0",
	})

	ctx := context.Background()
	require.NoError(t, h.Start(ctx))

	t.Cleanup(func() {
		h.Stop()
	})

	// Give server a moment to start serving.
	time.Sleep(50 * time.Millisecond)

	return h
}

func TestHealthMetrics_StartStop(t *testing.T) {
	h := startHealth(t)
	assert.True(t, h.running.Load())
	assert.NotEmpty(t, h.Addr())
}

func TestHealthMetrics_HandleReport(t *testing.T) {
	h := startHealth(t)

	h.HandleReport(instrument.Report{FPS: 58, Objects: 64, Triangles: 300, Lines: 20, Points: 1})
	h.HandleReport(instrument.Report{FPS: 60, Objects: 64, Triangles: 300})

	url := fmt.Sprintf("http://%s/metrics", h.Addr())

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bodyStr := string(body)
	assert.Contains(t, bodyStr, "glmetrics_frames_ticked_total 2")
	assert.Contains(t, bodyStr, "glmetrics_fps 60")
	assert.Contains(t, bodyStr, "glmetrics_scene_objects 64")
	assert.Contains(t, bodyStr, `glmetrics_primitives_total{bucket="triangles"} 600`)
	assert.Contains(t, bodyStr, `glmetrics_primitives_total{bucket="lines"} 20`)
	assert.Contains(t, bodyStr, `glmetrics_primitives_total{bucket="points"} 1`)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, c.Write(&m))

	return m.GetCounter().GetValue()
}

func TestHealthMetrics_RecordError(t *testing.T) {
	h := NewHealthMetrics(testLog(), HealthConfig{})

	h.RecordError(fmt.Errorf("wrapped: %w", metrics.ErrUnsupportedPrimitiveType))
	h.RecordError(metrics.ErrUnsupportedPrimitiveType)
	h.RecordError(fmt.Errorf("updating display: %w", display.ErrDisplayTargetMissing))
	h.RecordError(fmt.Errorf("boom"))

	assert.Equal(t, 2.0, counterValue(t,
		h.InstrumentErrors.WithLabelValues("unsupported_primitive_type"),
	))
	assert.Equal(t, 1.0, counterValue(t,
		h.InstrumentErrors.WithLabelValues("display_target_missing"),
	))
	assert.Equal(t, 1.0, counterValue(t,
		h.InstrumentErrors.WithLabelValues("other"),
	))
}

func TestHealthMetrics_HealthzResponse(t *testing.T) {
	h := startHealth(t)

	url := fmt.Sprintf("http://%s/healthz", h.Addr())

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestHealthMetrics_StopIdempotent(t *testing.T) {
	h := NewHealthMetrics(testLog(), HealthConfig{})

	assert.NoError(t, h.Stop())
	assert.NoError(t, h.Stop())
}

func TestHealthMetrics_AddrBeforeStart(t *testing.T) {
	h := NewHealthMetrics(testLog(), HealthConfig{
		Addr: ":9999",
	})

	// Before Start, Addr returns the configured address.
	assert.Equal(t, ":9999", h.Addr())
}
