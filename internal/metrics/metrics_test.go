package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestReplayMetricsIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReplay(true, 0.25)
	m.CommandSucceeded()
	m.CommandSucceeded()
	m.CommandFailed()
	m.Retry()
	m.HydrationGap()
	m.CacheHit()
	m.CacheMiss()
	m.GroundTruthObject(3)
	m.MM2Object(2)
	m.OnDemandObject()

	if got := counterValue(t, m.replaysTotal); got != 1 {
		t.Errorf("replaysTotal = %v, want 1", got)
	}
	if got := counterValue(t, m.replaysSucceeded); got != 1 {
		t.Errorf("replaysSucceeded = %v, want 1", got)
	}
	if got := counterValue(t, m.commandsSucceeded); got != 2 {
		t.Errorf("commandsSucceeded = %v, want 2", got)
	}
	if got := counterValue(t, m.commandsFailed); got != 1 {
		t.Errorf("commandsFailed = %v, want 1", got)
	}
	if got := counterValue(t, m.groundTruthObjects); got != 3 {
		t.Errorf("groundTruthObjects = %v, want 3", got)
	}
	if got := counterValue(t, m.mm2Objects); got != 2 {
		t.Errorf("mm2Objects = %v, want 2", got)
	}
	if got := counterValue(t, m.onDemandObjects); got != 1 {
		t.Errorf("onDemandObjects = %v, want 1", got)
	}
}

func TestNewWithNilRegistryIsIsolated(t *testing.T) {
	a := New(nil)
	b := New(nil)
	a.CommandSucceeded()
	if got := counterValue(t, b.commandsSucceeded); got != 0 {
		t.Errorf("b.commandsSucceeded = %v, want 0 (registries must be independent)", got)
	}
}
