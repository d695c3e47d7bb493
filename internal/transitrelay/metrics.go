package transitrelay

import "github.com/prometheus/client_golang/prometheus"

var (
	pairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pylon_transit_pairs_total",
			Help: "Number of connection pairs spliced",
		},
	)
	unpaired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pylon_transit_dropped_connections_total",
			Help: "Number of connections dropped before pairing by reason",
		},
		[]string{"reason"},
	)
	relayedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pylon_transit_bytes_total",
			Help: "Number of bytes relayed in either direction",
		},
	)
	activePairs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pylon_transit_active_pairs",
			Help: "Number of pairs currently being spliced",
		},
	)
)

func init() {
	prometheus.MustRegister(pairs)
	prometheus.MustRegister(unpaired)
	prometheus.MustRegister(relayedBytes)
	prometheus.MustRegister(activePairs)
}
