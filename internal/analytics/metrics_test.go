package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Expected no error registering metrics, got %v", err)
	}

	// Double registration must fail.
	if err := m.Register(reg); err == nil {
		t.Error("Expected error on duplicate registration, got nil")
	}
}

func TestMetrics_ComputeCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Expected no error registering metrics, got %v", err)
	}

	f := newFixtures()
	f.engine.WithMetrics(m)

	if _, err := f.engine.RevenueSummary(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := f.engine.RevenueSummary(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Expected no error gathering metrics, got %v", err)
	}

	mf := findMetric(t, families, "analytics_compute_total")
	if mf == nil {
		t.Fatal("Expected analytics_compute_total to be gathered")
	}
	var found bool
	for _, metric := range mf.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "report" && label.GetValue() == "revenue" {
				found = true
				if got := metric.GetCounter().GetValue(); got != 2 {
					t.Errorf("Expected 2 revenue computations, got %v", got)
				}
			}
		}
	}
	if !found {
		t.Error("Expected a revenue-labeled compute counter")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.observeCompute("revenue", time.Now(), nil)
	m.setProvidersSeen(3)
}
