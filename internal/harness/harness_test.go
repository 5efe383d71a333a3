package harness

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpexport "github.com/ethpandaops/glmetrics/internal/export/http"
	"github.com/ethpandaops/glmetrics/internal/instrument"
	"github.com/ethpandaops/glmetrics/internal/scene"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.RunID = "test-run"
	cfg.TargetFPS = 500
	cfg.Duration = 150 * time.Millisecond
	cfg.SegmentLength = 50 * time.Millisecond
	cfg.Scene.NX = 2
	cfg.Scene.NY = 3
	cfg.Sinks.Log.Enabled = false

	return cfg
}

func run(t *testing.T, h *harness) {
	t.Helper()

	require.NoError(t, h.Start(context.Background()))

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("harness did not finish")
	}

	require.NoError(t, h.Stop())
}

func counterValue(t *testing.T, h *harness, name string) float64 {
	t.Helper()

	families, err := h.health.Registry().Gather()
	require.NoError(t, err)

	var total float64

	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}

		for _, m := range fam.GetMetric() {
			total += metricValue(m)
		}
	}

	return total
}

func metricValue(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}

func TestHarness_RendersAndReports(t *testing.T) {
	cfg := testConfig()
	cfg.Display.Enabled = true

	var out bytes.Buffer

	h, err := newHarness(testLog(), cfg, &out)
	require.NoError(t, err)

	run(t, h)

	last, ok := h.Last()
	require.True(t, ok)
	require.Greater(t, last.Frame, uint64(1))

	expected := h.scene.Expected()
	assert.Equal(t, 3*2*3, last.Objects)
	assert.Equal(t, expected.Triangles, last.Triangles)
	assert.Equal(t, expected.Lines, last.Lines)
	assert.Zero(t, last.Points)
	assert.Positive(t, last.FPS)

	assert.Contains(t, out.String(), "18 objects\n")
	assert.Equal(t, float64(last.Frame), counterValue(t, h, "glmetrics_frames_ticked_total"))
	assert.Equal(t, float64(last.Objects), counterValue(t, h, "glmetrics_scene_objects"))
	assert.Positive(t, counterValue(t, h, "glmetrics_segments_completed_total"))
}

func TestHarness_StandaloneIgnoresInstancedDraws(t *testing.T) {
	cfg := testConfig()
	cfg.Variant = "standalone"
	cfg.Scene.Instancing = true
	cfg.Scene.Representation = "surface"

	h, err := newHarness(testLog(), cfg, io.Discard)
	require.NoError(t, err)

	run(t, h)

	last, ok := h.Last()
	require.True(t, ok)
	require.Greater(t, last.Frame, uint64(1))

	assert.Equal(t, instrument.VariantStandalone, last.Variant)
	assert.Zero(t, last.Triangles)
	assert.Positive(t, h.scene.Expected().Triangles)
}

func TestHarness_HiddenLayersAndPoints(t *testing.T) {
	cfg := testConfig()
	cfg.Scene.Representation = "points"
	cfg.Scene.HiddenLayers = []string{"sphere", "cylinder"}

	h, err := newHarness(testLog(), cfg, io.Discard)
	require.NoError(t, err)

	run(t, h)

	last, ok := h.Last()
	require.True(t, ok)
	require.Greater(t, last.Frame, uint64(1))

	cone := scene.ConeMesh(scene.DefaultResolution)
	assert.Equal(t, int64(2*3*cone.Vertices), last.Points)
	assert.Zero(t, last.Triangles)
	assert.Zero(t, last.Lines)
}

func TestHarness_HTTPSink(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Sinks.HTTP.Enabled = true
	cfg.Sinks.HTTP.Address = server.URL
	cfg.Sinks.HTTP.Compression = httpexport.CompressionNone
	cfg.Sinks.HTTP.BatchTimeout = 10 * time.Millisecond

	h, err := newHarness(testLog(), cfg, io.Discard)
	require.NoError(t, err)

	run(t, h)

	last, ok := h.Last()
	require.True(t, ok)

	mu.Lock()
	defer mu.Unlock()

	all := strings.Join(bodies, "")
	assert.Equal(t, int(last.Frame), strings.Count(all, `"run_id":"test-run"`))
	assert.Contains(t, all, `"objects":18`)
}

func TestHarness_ClampsUnvalidatedTargetFPS(t *testing.T) {
	for _, rate := range []int{0, 2_000_000_000} {
		cfg := testConfig()
		cfg.TargetFPS = rate

		h, err := newHarness(testLog(), cfg, &bytes.Buffer{})
		require.NoError(t, err)

		assert.NotPanics(t, func() { run(t, h) }, "rate %d", rate)
	}
}

func TestHarness_GeneratesRunID(t *testing.T) {
	cfg := testConfig()
	cfg.RunID = ""

	h, err := newHarness(testLog(), cfg, io.Discard)
	require.NoError(t, err)

	assert.Len(t, h.runID, 36)
}

func TestHarness_InvalidVariant(t *testing.T) {
	cfg := testConfig()
	cfg.Variant = "plugin"

	_, err := newHarness(testLog(), cfg, io.Discard)
	require.Error(t, err)
}

func TestHarness_StopBeforeStart(t *testing.T) {
	h, err := newHarness(testLog(), testConfig(), io.Discard)
	require.NoError(t, err)

	require.NoError(t, h.Stop())

	_, ok := h.Last()
	assert.False(t, ok)
}

func TestMonotonicMs(t *testing.T) {
	a := monotonicMs()
	time.Sleep(5 * time.Millisecond)
	b := monotonicMs()

	assert.GreaterOrEqual(t, b-a, 4.0)
}
