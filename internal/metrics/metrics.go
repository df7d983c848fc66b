// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the engine collectors registered on one registry.
type Metrics struct {
	Turns         *prometheus.CounterVec
	NodesExecuted *prometheus.CounterVec
	ActionsTotal  *prometheus.CounterVec
	LoopGuardHits prometheus.Counter
	TurnDuration  prometheus.Histogram
}

// New registers the engine collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botflow",
			Name:      "turns_total",
			Help:      "Turns processed, by terminal outcome.",
		}, []string{"outcome"}),
		NodesExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botflow",
			Name:      "nodes_executed_total",
			Help:      "Nodes entered during turns, by node type.",
		}, []string{"type"}),
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "botflow",
			Name:      "actions_total",
			Help:      "Actions executed, by type and status.",
		}, []string{"type", "status"}),
		LoopGuardHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "botflow",
			Name:      "loop_guard_hits_total",
			Help:      "Turns aborted by the node-hop ceiling.",
		}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "botflow",
			Name:      "turn_duration_seconds",
			Help:      "Wall time per turn.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Nop returns collectors bound to a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
