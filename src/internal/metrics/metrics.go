package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the daemon's Prometheus metrics. It implements
// events.Recorder and the WiFi orchestrator's scan recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	EventsPublished *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
	OperationErrors *prometheus.CounterVec
	ScanDuration    prometheus.Histogram
	ScanResults     prometheus.Gauge
	StoreEntries    *prometheus.GaugeVec
	NetworkState    prometheus.Gauge
	Connectivity    prometheus.Gauge
	RunnerRestarts  *prometheus.CounterVec
}

var _ events.Recorder = (*Collector)(nil)

// NewCollector registers metrics against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	published, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netctl_events_published_total",
		Help: "Events published on the notification bus, labeled by kind.",
	}, []string{"kind"}), "netctl_events_published_total")
	if err != nil {
		return nil, err
	}
	dropped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netctl_events_dropped_total",
		Help: "Events dropped because a subscriber queue was full, labeled by kind.",
	}, []string{"kind"}), "netctl_events_dropped_total")
	if err != nil {
		return nil, err
	}
	opErrors, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netctl_operation_errors_total",
		Help: "Failed control operations, labeled by operation and error code.",
	}, []string{"operation", "code"}), "netctl_operation_errors_total")
	if err != nil {
		return nil, err
	}
	scanDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netctl_wifi_scan_duration_seconds",
		Help:    "Duration of WiFi scans including the grace period.",
		Buckets: []float64{0.5, 1, 2, 3, 4, 5, 7.5, 10, 15, 30},
	}), "netctl_wifi_scan_duration_seconds")
	if err != nil {
		return nil, err
	}
	scanResults, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netctl_wifi_access_points",
		Help: "Access points found by the last successful scan.",
	}), "netctl_wifi_access_points")
	if err != nil {
		return nil, err
	}
	entries, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netctl_store_entries",
		Help: "Current number of entries per entity store.",
	}, []string{"store"}), "netctl_store_entries")
	if err != nil {
		return nil, err
	}
	networkState, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netctl_network_state",
		Help: "Aggregate network state as its numeric value (60 is connected-global).",
	}), "netctl_network_state")
	if err != nil {
		return nil, err
	}
	connectivity, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netctl_connectivity",
		Help: "Last connectivity classification as its numeric value (4 is full).",
	}), "netctl_connectivity")
	if err != nil {
		return nil, err
	}
	restarts, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netctl_runner_restarts_total",
		Help: "Restarts of supervised daemon components, labeled by runner and reason.",
	}, []string{"runner", "reason"}), "netctl_runner_restarts_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		EventsPublished: published,
		EventsDropped:   dropped,
		OperationErrors: opErrors,
		ScanDuration:    scanDuration,
		ScanResults:     scanResults,
		StoreEntries:    entries,
		NetworkState:    networkState,
		Connectivity:    connectivity,
		RunnerRestarts:  restarts,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) EventPublished(kind events.Kind) {
	if c == nil {
		return
	}
	c.EventsPublished.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) EventDropped(kind events.Kind) {
	if c == nil {
		return
	}
	c.EventsDropped.WithLabelValues(string(kind)).Inc()
}

// ScanFinished records a scan. Failed scans only count towards the duration.
func (c *Collector) ScanFinished(d time.Duration, found int, err error) {
	if c == nil {
		return
	}
	c.ScanDuration.Observe(d.Seconds())
	if err == nil {
		c.ScanResults.Set(float64(found))
	}
}

// OperationFailed counts a failed control operation by its error code.
func (c *Collector) OperationFailed(operation string, err error) {
	if c == nil || err == nil {
		return
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = string(errors.ErrCodeService)
	}
	c.OperationErrors.WithLabelValues(operation, code).Inc()
}

// SetStoreSizes updates the entity store gauges.
func (c *Collector) SetStoreSizes(sizes map[string]int) {
	if c == nil {
		return
	}
	for name, n := range sizes {
		c.StoreEntries.WithLabelValues(name).Set(float64(n))
	}
}

// SetNetworkState records the aggregate state and connectivity.
func (c *Collector) SetNetworkState(networkState, connectivity uint32) {
	if c == nil {
		return
	}
	c.NetworkState.Set(float64(networkState))
	c.Connectivity.Set(float64(connectivity))
}

// RunnerRestarted counts a restart of a supervised component.
func (c *Collector) RunnerRestarted(runner, reason string) {
	if c == nil {
		return
	}
	c.RunnerRestarts.WithLabelValues(runner, reason).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
