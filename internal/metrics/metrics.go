// Package metrics defines the Prometheus collectors exported by billsplit.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation results recorded in the result label.
const (
	ResultOK      = "ok"
	ResultNoop    = "noop"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations   *prometheus.CounterVec
	bills       prometheus.Gauge
	rpcDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billsplit",
			Name:      "mutations_total",
			Help:      "Collection and bill mutations by operation and result.",
		}, []string{"operation", "result"}),
		bills: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "billsplit",
			Name:      "bills",
			Help:      "Number of bills in the collection.",
		}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billsplit",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling time by procedure and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

// ObserveMutation counts one mutation.
func (m *Metrics) ObserveMutation(operation, result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, result).Inc()
}

// SetBills records the current collection size.
func (m *Metrics) SetBills(n int) {
	if m == nil {
		return
	}
	m.bills.Set(float64(n))
}

// ObserveRPC records how long one RPC took.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}
