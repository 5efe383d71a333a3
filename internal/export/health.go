package export

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/display"
	"github.com/ethpandaops/glmetrics/internal/instrument"
	"github.com/ethpandaops/glmetrics/internal/metrics"
)

const namespace = "glmetrics"

// HealthConfig configures the Prometheus health metrics server.
type HealthConfig struct {
	// Enabled starts the HTTP server. Metrics are still collected when
	// disabled.
	Enabled bool `yaml:"enabled"`

	// Addr is the listen address for the health metrics server.
	// Defaults to ":9090".
	Addr string `yaml:"addr"`
}

// HealthMetrics exposes Prometheus metrics for the harness.
type HealthMetrics struct {
	log      logrus.FieldLogger
	addr     string
	server   *http.Server
	listener net.Listener
	registry *prometheus.Registry

	// Frame reporting
	FramesTicked     prometheus.Counter
	PrimitivesTotal  *prometheus.CounterVec // bucket
	FPS              prometheus.Gauge
	Objects          prometheus.Gauge
	FrameDuration    prometheus.Histogram
	DrawCallsPerTick prometheus.Histogram

	// Instrumentation errors
	InstrumentErrors *prometheus.CounterVec // error_type

	// Segments
	SegmentsCompleted prometheus.Counter
	CurrentSegment    prometheus.Gauge

	// Sink layer
	SinkReportsProcessed *prometheus.CounterVec   // sink
	SinkReportsDropped   *prometheus.CounterVec   // sink
	SinkFlushDuration    *prometheus.HistogramVec // sink
	SinkBatchSize        *prometheus.HistogramVec // sink

	// Export layer
	ClickHouseConnected *prometheus.GaugeVec   // sink
	ExportBatchErrors   *prometheus.CounterVec // sink, error_type

	running atomic.Bool
}

// NewHealthMetrics creates a new health metrics server.
func NewHealthMetrics(
	log logrus.FieldLogger,
	cfg HealthConfig,
) *HealthMetrics {
	reg := prometheus.NewRegistry()

	h := &HealthMetrics{
		log:      log.WithField("component", "health"),
		addr:     cfg.Addr,
		registry: reg,

		FramesTicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_ticked_total",
			Help:      "Total tick calls (rendered frames).",
		}),
		PrimitivesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "primitives_total",
				Help:      "Total primitives drawn by bucket.",
			},
			[]string{"bucket"},
		),
		FPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fps",
			Help:      "Frames in the trailing frame-rate window.",
		}),
		Objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scene_objects",
			Help:      "Number of objects in the scene.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time to render and tick one frame.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.004, 0.008, 0.016, 0.033, 0.1}, // 100us-100ms
		}),
		DrawCallsPerTick: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draw_calls_per_tick",
			Help:      "Draw calls issued between two ticks.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9), // 1-65536
		}),
		InstrumentErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instrument_errors_total",
				Help:      "Total instrumentation errors by type.",
			},
			[]string{"error_type"},
		),
		SegmentsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_completed_total",
			Help:      "Total benchmark segments completed.",
		}),
		CurrentSegment: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_segment",
			Help:      "Current benchmark segment number.",
		}),
		SinkReportsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_reports_processed_total",
				Help:      "Total reports processed by sink.",
			},
			[]string{"sink"},
		),
		SinkReportsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_reports_dropped_total",
				Help:      "Total reports dropped by sink.",
			},
			[]string{"sink"},
		),
		SinkFlushDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sink_flush_duration_seconds",
				Help:      "Time to flush a batch of reports by sink.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}, // 1ms-1s
			},
			[]string{"sink"},
		),
		SinkBatchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sink_batch_size",
				Help:      "Number of reports per batch flush by sink.",
				Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"sink"},
		),
		ClickHouseConnected: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "clickhouse_connected",
				Help:      "Whether ClickHouse connection is established (1=yes, 0=no).",
			},
			[]string{"sink"},
		),
		ExportBatchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_batch_errors_total",
				Help:      "Total export batch errors by sink and error type.",
			},
			[]string{"sink", "error_type"},
		),
	}

	reg.MustRegister(
		h.FramesTicked,
		h.PrimitivesTotal,
		h.FPS,
		h.Objects,
		h.FrameDuration,
		h.DrawCallsPerTick,
		h.InstrumentErrors,
		h.SegmentsCompleted,
		h.CurrentSegment,
		h.SinkReportsProcessed,
		h.SinkReportsDropped,
		h.SinkFlushDuration,
		h.SinkBatchSize,
		h.ClickHouseConnected,
		h.ExportBatchErrors,
	)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return h
}

// HandleReport records one tick's report.
func (h *HealthMetrics) HandleReport(r instrument.Report) {
	h.FramesTicked.Inc()
	h.FPS.Set(float64(r.FPS))
	h.Objects.Set(float64(r.Objects))
	h.PrimitivesTotal.WithLabelValues(metrics.BucketTriangles.String()).Add(float64(r.Triangles))
	h.PrimitivesTotal.WithLabelValues(metrics.BucketLines.String()).Add(float64(r.Lines))
	h.PrimitivesTotal.WithLabelValues(metrics.BucketPoints.String()).Add(float64(r.Points))
}

// RecordError counts an instrumentation error by kind.
func (h *HealthMetrics) RecordError(err error) {
	h.InstrumentErrors.WithLabelValues(errorType(err)).Inc()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, metrics.ErrUnsupportedPrimitiveType):
		return "unsupported_primitive_type"
	case errors.Is(err, display.ErrDisplayTargetMissing):
		return "display_target_missing"
	default:
		return "other"
	}
}

// Registry returns the underlying Prometheus registry.
func (h *HealthMetrics) Registry() *prometheus.Registry {
	return h.registry
}

// Start begins serving the /metrics endpoint.
func (h *HealthMetrics) Start(_ context.Context) error {
	if h.addr == "" {
		h.addr = ":9090"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		h.registry,
		promhttp.HandlerOpts{},
	))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	// pprof endpoints for CPU/memory profiling of the render loop.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}

	h.listener = ln
	h.server = &http.Server{Handler: mux}

	h.running.Store(true)

	go func() {
		h.log.WithField("addr", ln.Addr().String()).
			Info("Health metrics server started")

		if err := h.server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			h.log.WithError(err).
				Error("Health metrics server error")
		}

		h.running.Store(false)
	}()

	return nil
}

// Addr returns the actual listener address. Useful when started
// with ":0" to get the OS-assigned port.
func (h *HealthMetrics) Addr() string {
	if h.listener != nil {
		return h.listener.Addr().String()
	}

	return h.addr
}

// Stop gracefully shuts down the health metrics server.
func (h *HealthMetrics) Stop() error {
	if h.server == nil {
		return nil
	}

	return h.server.Close()
}
