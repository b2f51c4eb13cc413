package fleet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andrewgierens/tessie2mqtt/core/metrics"
	"github.com/andrewgierens/tessie2mqtt/core/state"
	"github.com/andrewgierens/tessie2mqtt/infra/logger"
	"github.com/andrewgierens/tessie2mqtt/internal/eventbus"
)

type stubSource struct {
	records []state.Record
	err     error
}

func (s stubSource) Fetch(context.Context) ([]state.Record, error) {
	return s.records, s.err
}

type recordingSink struct {
	mu        sync.Mutex
	refreshes []metrics.RefreshEvent
	telemetry []metrics.VehicleTelemetryEvent
	fleetSize int
}

func (r *recordingSink) RecordRefresh(ev metrics.RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes = append(r.refreshes, ev)
	return nil
}

func (r *recordingSink) RecordCommand(metrics.CommandEvent) error { return nil }

func (r *recordingSink) RecordVehicleTelemetry(ev metrics.VehicleTelemetryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.telemetry = append(r.telemetry, ev)
	return nil
}

func (r *recordingSink) RecordFleetSize(size int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fleetSize = size
	return nil
}

func TestPoller_RefreshReplacesSnapshot(t *testing.T) {
	store := state.NewStore("vin")
	bus := eventbus.New()
	events := bus.Subscribe()
	sink := &recordingSink{}
	src := stubSource{records: []state.Record{{"vin": "AAA"}, {"vin": "BBB"}}}
	p := NewPoller(src, store, bus, sink, logger.NopLogger{}, time.Minute, nil)

	p.Refresh(context.Background())

	if len(store.Snapshot().Records) != 2 {
		t.Fatalf("snapshot not replaced: %#v", store.Snapshot())
	}
	select {
	case ev := <-events:
		ref, ok := ev.(Refreshed)
		if !ok || ref.Vehicles != 2 {
			t.Fatalf("unexpected event %#v", ev)
		}
	default:
		t.Fatalf("expected Refreshed event")
	}
	if sink.fleetSize != 2 {
		t.Fatalf("fleet size not recorded: %d", sink.fleetSize)
	}
	if len(sink.refreshes) != 1 || sink.refreshes[0].Error != "" {
		t.Fatalf("refresh event wrong: %#v", sink.refreshes)
	}
}

func TestPoller_FetchErrorKeepsSnapshot(t *testing.T) {
	store := state.NewStore("vin")
	store.Replace([]state.Record{{"vin": "AAA"}})
	sink := &recordingSink{}
	src := stubSource{err: errors.New("api down")}
	p := NewPoller(src, store, nil, sink, logger.NopLogger{}, time.Minute, nil)

	before := store.Snapshot().Version
	p.Refresh(context.Background())

	if store.Snapshot().Version != before {
		t.Fatalf("failed fetch must not replace the snapshot")
	}
	if len(sink.refreshes) != 1 || sink.refreshes[0].Error == "" {
		t.Fatalf("refresh error not recorded: %#v", sink.refreshes)
	}
}

func TestPoller_TelemetryExtraction(t *testing.T) {
	store := state.NewStore("vin")
	sink := &recordingSink{}
	src := stubSource{records: []state.Record{
		{"vin": "AAA", "last_state": map[string]any{"charge_state": map[string]any{"battery_level": 55.0}}},
		{"vin": "BBB"},
	}}
	keys := []string{"last_state.charge_state.battery_level"}
	p := NewPoller(src, store, nil, sink, logger.NopLogger{}, time.Minute, keys)

	p.Refresh(context.Background())

	if len(sink.telemetry) != 1 {
		t.Fatalf("expected telemetry for one vehicle, got %d", len(sink.telemetry))
	}
	ev := sink.telemetry[0]
	if ev.VehicleID != "AAA" || ev.Fields[keys[0]] != 55.0 {
		t.Fatalf("unexpected telemetry %#v", ev)
	}
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	store := state.NewStore("vin")
	p := NewPoller(stubSource{}, store, nil, nil, logger.NopLogger{}, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("poller did not stop")
	}
}
