package fleet

import (
	"context"
	"time"

	"github.com/andrewgierens/tessie2mqtt/core/logger"
	"github.com/andrewgierens/tessie2mqtt/core/metrics"
	"github.com/andrewgierens/tessie2mqtt/core/state"
	"github.com/andrewgierens/tessie2mqtt/internal/eventbus"
)

// Poller periodically fetches the fleet snapshot and replaces the store
// contents wholesale. A failed fetch keeps serving the previous snapshot.
type Poller struct {
	src      Source
	store    *state.Store
	bus      eventbus.EventBus
	sink     metrics.MetricsSink
	log      logger.Logger
	interval time.Duration
	// telemetryKeys are numeric record paths exported to telemetry sinks on
	// each refresh.
	telemetryKeys []string
}

// NewPoller assembles a poller. A zero interval defaults to 30 seconds; a
// nil sink discards metrics.
func NewPoller(src Source, store *state.Store, bus eventbus.EventBus, sink metrics.MetricsSink, log logger.Logger, interval time.Duration, telemetryKeys []string) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Poller{src: src, store: store, bus: bus, sink: sink, log: log, interval: interval, telemetryKeys: telemetryKeys}
}

// Run refreshes once immediately, then on every tick until the context is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.Refresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs a single fetch-and-replace cycle.
func (p *Poller) Refresh(ctx context.Context) {
	start := time.Now()
	records, err := p.src.Fetch(ctx)
	ev := metrics.RefreshEvent{Duration: time.Since(start), Time: time.Now()}
	if err != nil {
		p.log.Errorf("fleet fetch failed: %v", err)
		ev.Error = err.Error()
		if recErr := p.sink.RecordRefresh(ev); recErr != nil {
			p.log.Errorf("record refresh: %v", recErr)
		}
		return
	}
	version := p.store.Replace(records)
	ev.Version = version
	ev.Vehicles = len(records)
	if recErr := p.sink.RecordRefresh(ev); recErr != nil {
		p.log.Errorf("record refresh: %v", recErr)
	}
	if fr, ok := p.sink.(metrics.FleetSizeRecorder); ok {
		if recErr := fr.RecordFleetSize(len(records)); recErr != nil {
			p.log.Errorf("record fleet size: %v", recErr)
		}
	}
	p.recordTelemetry(records)
	p.log.Debugw("snapshot refreshed", map[string]any{"version": version, "vehicles": len(records)})
	if p.bus != nil {
		p.bus.Publish(Refreshed{Version: version, Vehicles: len(records)})
	}
}

func (p *Poller) recordTelemetry(records []state.Record) {
	tr, ok := p.sink.(metrics.VehicleTelemetryRecorder)
	if !ok || len(p.telemetryKeys) == 0 {
		return
	}
	idField := p.store.IDField()
	now := time.Now()
	for _, rec := range records {
		vin, ok := state.GetString(rec, idField)
		if !ok {
			continue
		}
		fields := make(map[string]float64, len(p.telemetryKeys))
		for _, key := range p.telemetryKeys {
			if v, ok := state.GetFloat(rec, key); ok {
				fields[key] = v
			}
		}
		if len(fields) == 0 {
			continue
		}
		ev := metrics.VehicleTelemetryEvent{VehicleID: vin, Fields: fields, Time: now}
		if err := tr.RecordVehicleTelemetry(ev); err != nil {
			p.log.Errorf("record telemetry for %s: %v", vin, err)
		}
	}
}
