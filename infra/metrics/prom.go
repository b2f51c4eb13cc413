package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/andrewgierens/tessie2mqtt/core/metrics"
)

// PromSink records bridge events in Prometheus metrics.
type PromSink struct {
	refreshes *prometheus.CounterVec
	commands  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	fleet     prometheus.Gauge
}

// NewPromSink registers bridge metrics on the default Prometheus registerer.
// The Prometheus server is started separately on cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_refresh_total",
		Help: "Total number of fleet snapshot refreshes",
	}, []string{"status"})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_commands_total",
		Help: "Total number of remote switch commands",
	}, []string{"action", "success"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_command_latency_seconds",
		Help:    "Time spent in remote switch commands",
		Buckets: prometheus.DefBuckets,
	}, []string{"action", "success"})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bridge_fleet_vehicles",
		Help: "Number of vehicles in the last snapshot",
	})

	if err := reg.Register(refreshes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			refreshes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(commands); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			commands = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{refreshes: refreshes, commands: commands, latency: latency, fleet: fleet}, nil
}

// RecordRefresh increments the refresh counter.
func (s *PromSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	status := "ok"
	if ev.Error != "" {
		status = "error"
	}
	s.refreshes.WithLabelValues(status).Inc()
	return nil
}

// RecordCommand counts the command and observes its latency.
func (s *PromSink) RecordCommand(ev coremetrics.CommandEvent) error {
	success := strconv.FormatBool(ev.Success)
	s.commands.WithLabelValues(ev.Action, success).Inc()
	s.latency.WithLabelValues(ev.Action, success).Observe(ev.Latency.Seconds())
	return nil
}

// RecordFleetSize sets the gauge to the number of vehicles in the snapshot.
func (s *PromSink) RecordFleetSize(size int) error {
	s.fleet.Set(float64(size))
	return nil
}
