package session

import "github.com/prometheus/client_golang/prometheus"

var (
	remotePersistOK = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kiturami_session_remote_persist_ok",
		Help: "Whether the last session mirror to blob storage succeeded (1=ok)",
	})
	saveFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kiturami_session_save_failures_total",
		Help: "Failed local session state writes",
	})
)

// MetricsCollectors exposes session persistence collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{remotePersistOK, saveFailure}
}
