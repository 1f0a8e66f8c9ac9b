package access

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultMetricsNamespace prefixes the metric names.
const DefaultMetricsNamespace = "entitlement"

// Decision modes reported in the "mode" label.
const (
	ModeAllow = "allow"
	ModeCheck = "check"
)

// Metrics counts access decisions. A nil *Metrics records nothing.
type Metrics struct {
	decisions *prometheus.CounterVec
	consumed  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered. Registering twice on the same reg panics.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultMetricsNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Total number of access decisions",
			},
			[]string{"mode", "outcome", "reason"},
		),
		consumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quota_consumed_total",
				Help:      "Total quota units consumed by allowed actions",
			},
			[]string{"key"},
		),
	}
}

func (m *Metrics) observe(mode string, res Result) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !res.Allowed {
		outcome = "denied"
	}
	m.decisions.WithLabelValues(mode, outcome, string(res.Reason)).Inc()
}

func (m *Metrics) consume(key string, amount int64) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(key).Add(float64(amount))
}
