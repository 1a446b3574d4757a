package pace

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiturami_provider_requests_total",
			Help: "Requests issued to the provider API",
		},
		[]string{"provider"},
	)
	waitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiturami_provider_courtesy_waits_total",
			Help: "Courtesy delays paid after provider requests",
		},
		[]string{"provider"},
	)
	lastStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kiturami_provider_last_status_code",
			Help: "Last HTTP status code observed from the provider",
		},
		[]string{"provider"},
	)
)

// MetricsCollectors exposes shared pacing collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		requestsTotal,
		waitsTotal,
		lastStatusGauge,
	}
}
