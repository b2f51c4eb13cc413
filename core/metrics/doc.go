// Package metrics defines the sink interfaces the bridge reports into.
// Concrete Prometheus and InfluxDB sinks live in infra/metrics; core code
// only sees MetricsSink and the optional recorder interfaces.
package metrics
