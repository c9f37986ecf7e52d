// Package metrics holds the Prometheus counters that every other package
// increments directly: the device runtimes (reconciliation ticks and sink
// failures) and the control-plane RPC server (call outcomes). Keeping the
// collector in its own leaf package, rather than under internal/adminapi,
// lets device/sink/rpcserver import it without adminapi ever needing to
// import them back.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the counters exposed at /metrics (SPEC_FULL.md §4):
// reconciliation ticks, sink failures, and admin/control-plane RPC calls.
type Collector struct {
	registry     *prometheus.Registry
	ticks        prometheus.Counter
	sinkFailures *prometheus.CounterVec
	rpcCalls     *prometheus.CounterVec
}

// New builds a Collector with its own private registry, so multiple
// Collectors (e.g. across tests) never collide on global metric names.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		ticks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "edge_mapper",
			Name:      "reconcile_ticks_total",
			Help:      "Total number of reconciliation loop iterations across all devices.",
		}),
		sinkFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "edge_mapper",
			Name:      "sink_failures_total",
			Help:      "Total number of recorder/publisher failures, by sink name.",
		}, []string{"sink"}),
		rpcCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "edge_mapper",
			Name:      "rpc_calls_total",
			Help:      "Total number of control-plane and admin RPC calls, by method and outcome.",
		}, []string{"method", "outcome"}),
	}
	return c
}

// Handler returns the HTTP handler serving the Prometheus text exposition
// format for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RegisterTick counts one reconciliation pass of one device runtime.
func (c *Collector) RegisterTick() {
	c.ticks.Inc()
}

// RegisterSinkFailure counts one recorder or publisher failure, labeled by
// backend name (e.g. "mysql", "http").
func (c *Collector) RegisterSinkFailure(sink string) {
	c.sinkFailures.WithLabelValues(sink).Inc()
}

// RegisterRPCCall counts one control-plane or admin RPC, labeled by method
// name and outcome ("ok" or "error").
func (c *Collector) RegisterRPCCall(method, outcome string) {
	c.rpcCalls.WithLabelValues(method, outcome).Inc()
}
