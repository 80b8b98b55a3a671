package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crew"

// Metrics 业务指标，每个实例持有独立的 Registry
type Metrics struct {
	Registry *prometheus.Registry

	InteractionToggles    *prometheus.CounterVec
	MembershipTransitions *prometheus.CounterVec
	NotificationFailures  *prometheus.CounterVec
	CounterDriftFixed     *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		InteractionToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interaction_toggles_total",
				Help:      "Like/bookmark toggle attempts by result",
			},
			[]string{"kind", "category", "result"},
		),
		MembershipTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "membership_transitions_total",
				Help:      "Team membership operations by result",
			},
			[]string{"team_kind", "operation", "result"},
		),
		NotificationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_failures_total",
				Help:      "Membership notifications that could not be dispatched",
			},
			[]string{"outcome"},
		),
		CounterDriftFixed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "counter_drift_fixed_total",
				Help:      "Content counters rewritten by reconciliation",
			},
			[]string{"kind", "category"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Handler /metrics 端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
