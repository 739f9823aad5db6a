package logship

import "github.com/prometheus/client_golang/prometheus"

var (
	DropTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poslane",
			Name:      "logship_drop_total",
			Help:      "Journal lines dropped because the collector was unreachable",
		},
		[]string{"reason"},
	)
	ReconnectTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poslane",
			Name:      "logship_reconnect_total",
			Help:      "Reconnect attempts after a write failure on a held connection",
		},
	)
)

func init() {
	prometheus.MustRegister(DropTotal, ReconnectTotal)
}
