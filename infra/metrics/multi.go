package metrics

import coremetrics "github.com/andrewgierens/tessie2mqtt/core/metrics"

// MultiSink fans bridge events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRefresh forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRefresh(ev coremetrics.RefreshEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRefresh(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommand forwards the event to all sinks.
func (m *MultiSink) RecordCommand(ev coremetrics.CommandEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCommand(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordVehicleTelemetry forwards telemetry to sinks that persist it.
func (m *MultiSink) RecordVehicleTelemetry(ev coremetrics.VehicleTelemetryEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.VehicleTelemetryRecorder); ok {
			if err := rec.RecordVehicleTelemetry(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards fleet size metrics when supported by the sink.
func (m *MultiSink) RecordFleetSize(size int) error {
	for _, s := range m.Sinks {
		if fr, ok := s.(coremetrics.FleetSizeRecorder); ok {
			if err := fr.RecordFleetSize(size); err != nil {
				return err
			}
		}
	}
	return nil
}
