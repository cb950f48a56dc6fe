// Package observability exposes the Prometheus metrics of the
// aggregation pipeline.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendsight",
		Name:      "events_processed_total",
		Help:      "Chain events handled, by event kind.",
	}, []string{"kind"})

	EventFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendsight",
		Name:      "event_failures_total",
		Help:      "Events whose handler returned an error, by event kind.",
	}, []string{"kind"})

	RevertedReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendsight",
		Name:      "reverted_reads_total",
		Help:      "Chain reads that reverted, by contract call.",
	}, []string{"call"})

	MarketsListed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lendsight",
		Name:      "markets_listed_total",
		Help:      "Markets registered since start.",
	})

	UniqueUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lendsight",
		Name:      "unique_users",
		Help:      "Cumulative unique protocol users.",
	})

	SnapshotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lendsight",
		Name:      "snapshot_writes_total",
		Help:      "Snapshot records written, by snapshot kind.",
	}, []string{"kind"})
)

// Handler serves the default registry for the web router.
func Handler() http.Handler {
	return promhttp.Handler()
}
