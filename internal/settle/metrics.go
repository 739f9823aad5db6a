package settle

import "github.com/prometheus/client_golang/prometheus"

// SettlementTotal counts completed settlements by tender type.
var SettlementTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "poslane",
		Name:      "settlement_total",
		Help:      "Completed settlements by tender type",
	},
	[]string{"tender"},
)

func init() {
	prometheus.MustRegister(SettlementTotal)
}
