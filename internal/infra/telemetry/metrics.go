package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsOptions configures the revocation metric collectors.
type MetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// Metrics exposes Prometheus collectors for revocation activity.
type Metrics struct {
	Checks         *prometheus.CounterVec
	Revocations    prometheus.Counter
	CleanupRemoved prometheus.Counter
}

// NewMetrics constructs and registers the revocation collectors. Registration
// tolerates collectors already registered by another engine instance sharing
// the registerer.
func NewMetrics(opts MetricsOptions) (*Metrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "jwt_revoke"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blacklist_checks_total",
		Help:      "Total blacklist lookups partitioned by result (hit, miss, expired, error).",
	}, []string{"result"})

	if err := reg.Register(checks); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register checks collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("existing checks collector has unexpected type %T", already.ExistingCollector)
		}
		checks = existing
	}

	revocations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revocations_total",
		Help:      "Total tokens written to the blacklist.",
	})

	if err := reg.Register(revocations); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register revocations collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("existing revocations collector has unexpected type %T", already.ExistingCollector)
		}
		revocations = existing
	}

	cleanupRemoved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_removed_total",
		Help:      "Total expired entries purged by cleanup runs.",
	})

	if err := reg.Register(cleanupRemoved); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, fmt.Errorf("register cleanup collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("existing cleanup collector has unexpected type %T", already.ExistingCollector)
		}
		cleanupRemoved = existing
	}

	return &Metrics{
		Checks:         checks,
		Revocations:    revocations,
		CleanupRemoved: cleanupRemoved,
	}, nil
}

// CheckResult labels for the Checks counter.
const (
	CheckHit     = "hit"
	CheckMiss    = "miss"
	CheckExpired = "expired"
	CheckError   = "error"
)

// ObserveCheck records one blacklist lookup outcome. Nil-safe so the engine
// can run without metrics wired.
func (m *Metrics) ObserveCheck(result string) {
	if m == nil || m.Checks == nil {
		return
	}
	m.Checks.WithLabelValues(result).Inc()
}

// ObserveRevocation records one blacklist write.
func (m *Metrics) ObserveRevocation() {
	if m == nil || m.Revocations == nil {
		return
	}
	m.Revocations.Inc()
}

// ObserveCleanup records the entries removed by a cleanup run.
func (m *Metrics) ObserveCleanup(removed int) {
	if m == nil || m.CleanupRemoved == nil || removed <= 0 {
		return
	}
	m.CleanupRemoved.Add(float64(removed))
}
