package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		out[fam.GetName()] = fam
	}
	return out
}

func TestSyncMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.ObserveDuration("in", 150*time.Millisecond)
	m.IncSuccess("in")
	m.IncFailure("out")
	m.IncFailure("out")

	families := gather(t, reg)

	success := families["cart_sync_success"]
	if success == nil || len(success.Metric) != 1 {
		t.Fatalf("unexpected success family %v", success)
	}
	if got := success.Metric[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}

	failure := families["cart_sync_failure"]
	if failure == nil || len(failure.Metric) != 1 {
		t.Fatalf("unexpected failure family %v", failure)
	}
	if got := failure.Metric[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
	if got := failure.Metric[0].GetLabel()[0].GetValue(); got != "out" {
		t.Fatalf("unexpected label %q", got)
	}

	duration := families["cart_sync_duration_seconds"]
	if duration == nil || duration.Metric[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("unexpected duration family %v", duration)
	}
}

func TestSyncMetricsNilSafe(t *testing.T) {
	var m *SyncMetrics
	m.ObserveDuration("in", time.Second)
	m.IncSuccess("in")
	m.IncFailure("out")

	unregistered := NewSyncMetrics(nil)
	unregistered.IncSuccess("in")
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := normalizeLabel("in"); got != "in" {
		t.Fatalf("unexpected label %q", got)
	}
}
