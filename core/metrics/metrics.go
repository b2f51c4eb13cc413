package metrics

import "time"

// RefreshEvent summarizes one poll cycle against the fleet source.
type RefreshEvent struct {
	Version  uint64
	Vehicles int
	Error    string
	Duration time.Duration
	Time     time.Time
}

// CommandEvent records a remote switch command and whether the optimistic
// local update was applied afterwards.
type CommandEvent struct {
	CommandID string
	VehicleID string
	UniqueID  string
	Action    string
	Success   bool
	Applied   bool
	Latency   time.Duration
	Time      time.Time
}

// VehicleTelemetryEvent carries the numeric leaves extracted from one
// vehicle record during a refresh.
type VehicleTelemetryEvent struct {
	VehicleID string
	Fields    map[string]float64
	Time      time.Time
}

// MetricsSink records bridge events for observability purposes.
type MetricsSink interface {
	RecordRefresh(ev RefreshEvent) error
	RecordCommand(ev CommandEvent) error
}

// VehicleTelemetryRecorder persists per-vehicle telemetry points. Sinks
// implement it when they have somewhere to store time series.
type VehicleTelemetryRecorder interface {
	RecordVehicleTelemetry(ev VehicleTelemetryEvent) error
}

// FleetSizeRecorder records the number of vehicles in the last snapshot.
type FleetSizeRecorder interface {
	RecordFleetSize(size int) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordRefresh(RefreshEvent) error { return nil }
func (NopSink) RecordCommand(CommandEvent) error { return nil }
