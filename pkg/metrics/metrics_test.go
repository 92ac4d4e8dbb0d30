package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveRun("curriculum", "committed", 150*time.Millisecond)
	m.AddRecords("instructors", "created", 3)
	m.AddRecords("instructors", "created", 0)
	m.TempLeak()

	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues("curriculum", "committed")); got != 1 {
		t.Errorf("runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.recordsTotal.WithLabelValues("instructors", "created")); got != 3 {
		t.Errorf("records = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.tempLeaksTotal); got != 1 {
		t.Errorf("leaks = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRun("x", "y", time.Second)
	m.AddRecords("x", "y", 1)
	m.TempLeak()
	m.TaskStarted()
	m.TaskDone()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TaskStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "kadrsp_background_tasks_in_flight 1") {
		t.Error("gauge not exported")
	}
}
