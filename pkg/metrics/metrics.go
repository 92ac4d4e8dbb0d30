package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kadrsp"

// Metrics ingestion counters on a private registry
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	recordsTotal   *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	tempLeaksTotal prometheus.Counter
	inFlight       prometheus.Gauge
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Ingestion runs by kind and terminal stage.",
		}, []string{"kind", "result"}),
		recordsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_records_total",
			Help:      "Ingested records by kind and outcome (created, updated, skipped).",
		}, []string{"kind", "outcome"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_run_duration_seconds",
			Help:      "Wall time of one ingestion run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind", "result"}),
		tempLeaksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "temp_file_leaks_total",
			Help:      "Uploaded temp files that could not be removed after retries.",
		}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "background_tasks_in_flight",
			Help:      "Background ingestion tasks currently running.",
		}),
	}
}

// ObserveRun records one finished run
func (m *Metrics) ObserveRun(kind, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(kind, result).Inc()
	m.runDuration.WithLabelValues(kind, result).Observe(took.Seconds())
}

// AddRecords counts records of one outcome
func (m *Metrics) AddRecords(kind, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsTotal.WithLabelValues(kind, outcome).Add(float64(n))
}

// TempLeak counts a temp file left on disk
func (m *Metrics) TempLeak() {
	if m == nil {
		return
	}
	m.tempLeaksTotal.Inc()
}

// TaskStarted / TaskDone track background tasks
func (m *Metrics) TaskStarted() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) TaskDone() {
	if m != nil {
		m.inFlight.Dec()
	}
}

// Handler exposes the registry for /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
