package kiturami

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector scrapes account devices and their liveness. Each
// scrape issues real API calls, and every call pays the vendor courtesy
// delay, so scrape intervals should stay well above the per-call cost.
type MetricsCollector struct {
	api      *API
	parentID string

	deviceCount prometheus.Gauge
	deviceAlive *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
	success     prometheus.Gauge
}

func NewMetricsCollector(api *API) *MetricsCollector {
	return &MetricsCollector{
		api:      api,
		parentID: "1",
		deviceCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiturami_device_count",
			Help: "Controllers registered to the account",
		}),
		deviceAlive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kiturami_device_alive",
			Help: "Controller liveness (1=responding)",
		}, []string{"node_id", "alias"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiturami_last_success_timestamp_seconds",
			Help: "Last successful scrape timestamp (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiturami_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.deviceCount.Describe(ch)
	c.deviceAlive.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.success.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	devices, err := c.api.Client().DeviceList(ctx)
	if err != nil {
		c.success.Set(0)
		// Stale per-device gauges must not be re-exported as current.
		c.deviceAlive.Reset()
		c.collectAll(ch)
		return
	}

	c.deviceCount.Set(float64(len(devices)))
	c.deviceAlive.Reset()
	for _, device := range devices {
		labels := prometheus.Labels{
			"node_id": device.NodeID,
			"alias":   device.Alias,
		}
		if _, err := c.api.Alive(ctx, c.parentID, device.NodeID); err != nil {
			c.deviceAlive.With(labels).Set(0)
			continue
		}
		c.deviceAlive.With(labels).Set(1)
	}

	c.success.Set(1)
	c.lastSuccess.Set(float64(time.Now().Unix()))
	c.collectAll(ch)
}

func (c *MetricsCollector) collectAll(ch chan<- prometheus.Metric) {
	c.deviceCount.Collect(ch)
	c.deviceAlive.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.success.Collect(ch)
}
