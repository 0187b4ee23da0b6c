package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_ObserveMutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("create recorder: %v", err)
	}

	rec.ObserveMutation("create_block", OutcomeOK, 20*time.Millisecond)
	rec.ObserveMutation("create_block", OutcomeOK, 10*time.Millisecond)
	rec.ObserveMutation("create_block", OutcomeExhausted, time.Millisecond)

	expected := `
# HELP hourplan_mutations_total Total number of schedule mutations by operation and outcome
# TYPE hourplan_mutations_total counter
hourplan_mutations_total{operation="create_block",outcome="capacity_exhausted"} 1
hourplan_mutations_total{operation="create_block",outcome="ok"} 2
`
	if err := testutil.CollectAndCompare(rec.mutations, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(rec.duration); c != 1 {
		t.Errorf("expected one duration series, got %d", c)
	}
}

func TestRecorder_WorkerSeries(t *testing.T) {
	rec, err := NewRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("create recorder: %v", err)
	}

	rec.AddSlicesWritten("ana", 3)
	rec.AddSlicesWritten("ana", 0)
	rec.SetOverassigned("ana", 2)

	if got := testutil.ToFloat64(rec.slices.WithLabelValues("ana")); got != 3 {
		t.Errorf("slices written = %v, want 3", got)
	}
	if got := testutil.ToFloat64(rec.overassigned.WithLabelValues("ana")); got != 2 {
		t.Errorf("overassigned = %v, want 2", got)
	}

	rec.ForgetWorker("ana")
	if c := testutil.CollectAndCount(rec.overassigned); c != 0 {
		t.Errorf("expected no overassigned series after ForgetWorker, got %d", c)
	}
}

func TestNewRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("first recorder: %v", err)
	}
	second, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("second recorder: %v", err)
	}

	first.ObserveMutation("delete_slice", OutcomeOK, time.Millisecond)
	if got := testutil.ToFloat64(second.mutations.WithLabelValues("delete_slice", "ok")); got != 1 {
		t.Errorf("second recorder should share the counter, got %v", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	rec.ObserveMutation("x", OutcomeOK, time.Second)
	rec.AddSlicesWritten("ana", 1)
	rec.SetOverassigned("ana", 1)
	rec.ForgetWorker("ana")
}
