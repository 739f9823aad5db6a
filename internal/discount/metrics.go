package discount

import "github.com/prometheus/client_golang/prometheus"

// TierTotal counts protocol-tier attempts by result so operators can see how
// often the lane is falling back to the legacy endpoint or to zero discount.
var TierTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "poslane",
		Name:      "pricing_tier_total",
		Help:      "Pricing resolver attempts by tier and result",
	},
	[]string{"tier", "result"},
)

func init() {
	prometheus.MustRegister(TierTotal)
}
