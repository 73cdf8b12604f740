package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordObservations(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(MetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	metrics.ObserveCheck(CheckHit)
	metrics.ObserveCheck(CheckHit)
	metrics.ObserveCheck(CheckMiss)
	metrics.ObserveRevocation()
	metrics.ObserveCleanup(3)
	metrics.ObserveCleanup(0)

	if got := testutil.ToFloat64(metrics.Checks.WithLabelValues(CheckHit)); got != 2 {
		t.Fatalf("expected 2 hit checks, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.Checks.WithLabelValues(CheckMiss)); got != 1 {
		t.Fatalf("expected 1 miss check, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.Revocations); got != 1 {
		t.Fatalf("expected 1 revocation, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.CleanupRemoved); got != 3 {
		t.Fatalf("expected 3 cleanup removals, got %f", got)
	}
}

func TestMetricsTolerateDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first, err := NewMetrics(MetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	second, err := NewMetrics(MetricsOptions{Registerer: registry})
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}

	first.ObserveRevocation()
	second.ObserveRevocation()

	if got := testutil.ToFloat64(second.Revocations); got != 2 {
		t.Fatalf("expected shared collector to count 2, got %f", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveCheck(CheckError)
	metrics.ObserveRevocation()
	metrics.ObserveCleanup(1)
}
