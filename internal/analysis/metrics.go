package analysis

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Definition
var (
	entityArrivalRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_arrival_rate_per_second",
			Help: "Estimated arrival rate for an entity stream.",
		},
		[]string{"entity"},
	)
	entityArrivalCV = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_arrival_cv",
			Help: "Coefficient of variation of inter-arrival times for an entity stream.",
		},
		[]string{"entity"},
	)
	entityServiceCV = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_service_cv",
			Help: "Coefficient of variation of service times for an entity stream.",
		},
		[]string{"entity"},
	)
	entityUtilization = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_utilization",
			Help: "Utilization at the recommended server count.",
		},
		[]string{"entity"},
	)
	entityWaitInQueue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_wait_in_queue_seconds",
			Help: "Mean wait in queue at the recommended server count.",
		},
		[]string{"entity"},
	)
	entityQueueLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_queue_length",
			Help: "Mean queue length at the recommended server count.",
		},
		[]string{"entity"},
	)
	entityRecommendedServers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queuelens_entity_recommended_servers",
			Help: "Smallest server count meeting the wait target, or the best achieved when infeasible.",
		},
		[]string{"entity"},
	)
	infeasibleTargets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queuelens_wait_target_infeasible_total",
			Help: "Number of analysis runs where the wait target was infeasible within the server bound.",
		},
		[]string{"entity"},
	)
)

// publishMetrics exports one entity's headline results. Infinite metrics
// from unstable configurations are skipped; Prometheus gauges keep their
// previous value rather than carrying +Inf.
func publishMetrics(res EntityResult) {
	if res.Status == StatusFailed {
		return
	}

	setFinite := func(g *prometheus.GaugeVec, v float64) {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return
		}
		g.WithLabelValues(res.Entity).Set(v)
	}

	setFinite(entityArrivalRate, res.ArrivalRate)
	setFinite(entityArrivalCV, res.ArrivalCV)
	setFinite(entityServiceCV, res.ServiceCV)

	rec := res.Recommendation
	if rec == nil {
		return
	}
	entityRecommendedServers.WithLabelValues(res.Entity).Set(float64(rec.Servers))
	setFinite(entityUtilization, rec.Result.Utilization)
	setFinite(entityWaitInQueue, rec.Result.WaitInQueue)
	setFinite(entityQueueLength, rec.Result.QueueLength)
	if !rec.Feasible {
		infeasibleTargets.WithLabelValues(res.Entity).Inc()
	}
}
