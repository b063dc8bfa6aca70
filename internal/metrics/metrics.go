package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scholarfolio"

// Fan-out outcomes
const (
	OutcomeCreated    = "created"
	OutcomeSelf       = "self"
	OutcomeUnresolved = "unresolved"
	OutcomeFailed     = "failed"
)

var (
	// Notifications counts fan-out attempts by engagement event and outcome.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "fanout_total",
		Help:      "Notification fan-out attempts by event and outcome.",
	}, []string{"event", "outcome"})

	// SavedItemsPruned counts stale saved-item ids dropped on read.
	SavedItemsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "saved_items",
		Name:      "pruned_total",
		Help:      "Saved item ids removed because the work no longer resolves.",
	})

	// DetachSkipped counts work deletions whose owner or course was already gone.
	DetachSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "references",
		Name:      "detach_skipped_total",
		Help:      "Reference detaches skipped because the owner record was missing.",
	}, []string{"work_type"})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{Notifications, SavedItemsPruned, DetachSkipped} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the metrics registered on reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
