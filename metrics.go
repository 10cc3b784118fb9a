package eventbus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements prometheus.Collector over a Bus's delivery
// counters and, for an asynchronous bus, its Event Queue depth. Unlike the
// counters it wraps, Collect allocates nothing but ConstMetrics: Stats() and
// GetEventQueue() are both lock-free snapshot reads.
type PrometheusCollector struct {
	bus *Bus

	publishedDesc *prometheus.Desc
	deliveredDesc *prometheus.Desc
	droppedDesc   *prometheus.Desc
	faultsDesc    *prometheus.Desc
	queueDepth    *prometheus.Desc
}

// NewPrometheusCollector creates a collector for bus. namespace prefixes
// every metric name; it defaults to "eventbus" when empty.
func NewPrometheusCollector(bus *Bus, namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "eventbus"
	}
	return &PrometheusCollector{
		bus: bus,
		publishedDesc: prometheus.NewDesc(
			fmt.Sprintf("%s_published_total", namespace),
			"Total events published", nil, nil,
		),
		deliveredDesc: prometheus.NewDesc(
			fmt.Sprintf("%s_delivered_total", namespace),
			"Total handler invocations completed without fault", nil, nil,
		),
		droppedDesc: prometheus.NewDesc(
			fmt.Sprintf("%s_dropped_total", namespace),
			"Total events rejected by a full async queue under the Reject policy (Rotate and Reset drops are not counted)", nil, nil,
		),
		faultsDesc: prometheus.NewDesc(
			fmt.Sprintf("%s_handler_faults_total", namespace),
			"Total handler invocations that returned an error or panicked", nil, nil,
		),
		queueDepth: prometheus.NewDesc(
			fmt.Sprintf("%s_queue_depth", namespace),
			"Current number of events queued awaiting asynchronous dispatch", nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.publishedDesc
	ch <- c.deliveredDesc
	ch <- c.droppedDesc
	ch <- c.faultsDesc
	ch <- c.queueDepth
}

// Collect implements prometheus.Collector.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.bus.Stats()
	ch <- prometheus.MustNewConstMetric(c.publishedDesc, prometheus.CounterValue, float64(stats.Published))
	ch <- prometheus.MustNewConstMetric(c.deliveredDesc, prometheus.CounterValue, float64(stats.Delivered))
	ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(stats.Dropped))
	ch <- prometheus.MustNewConstMetric(c.faultsDesc, prometheus.CounterValue, float64(stats.Faults))

	if q := c.bus.GetEventQueue(); q != nil {
		ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(q.Available()))
	}
}
