package entity

import (
	"testing"

	"github.com/andrewgierens/tessie2mqtt/core/state"
)

func testStore(t *testing.T, records ...state.Record) *state.Store {
	t.Helper()
	st := state.NewStore("vin")
	st.Replace(records)
	return st
}

func carRecord(vin, chargingState string) state.Record {
	return state.Record{
		"vin": vin,
		"last_state": map[string]any{
			"display_name": "My Car",
			"charge_state": map[string]any{
				"charging_state": chargingState,
			},
		},
	}
}

func TestSensor_Value(t *testing.T) {
	st := testStore(t, carRecord("ABC", "Stopped"))
	s := NewSensor(st, SensorDescription{Key: "last_state.charge_state.charging_state", Name: "Charging State"}, "ABC", Device{})
	v, ok := s.Value()
	if !ok || v != "Stopped" {
		t.Fatalf("got %v ok=%v", v, ok)
	}
}

func TestSensor_MissingRecord(t *testing.T) {
	st := testStore(t, carRecord("AAA", "Stopped"), carRecord("BBB", "Stopped"), carRecord("CCC", "Stopped"))
	s := NewSensor(st, SensorDescription{Key: "last_state.display_name", Name: "Name"}, "XYZ", Device{})
	if v, ok := s.Value(); ok {
		t.Fatalf("missing record must report unknown, got %v", v)
	}
}

func TestSensor_MissingPath(t *testing.T) {
	st := testStore(t, carRecord("ABC", "Stopped"))
	s := NewSensor(st, SensorDescription{Key: "last_state.climate_state.inside_temp", Name: "Temp"}, "ABC", Device{})
	if _, ok := s.Value(); ok {
		t.Fatalf("missing path must report unknown")
	}
}

func TestSensor_TracksSnapshotReplacement(t *testing.T) {
	st := testStore(t, carRecord("ABC", "Stopped"))
	s := NewSensor(st, SensorDescription{Key: "last_state.charge_state.charging_state", Name: "Charging State"}, "ABC", Device{})
	st.Replace([]state.Record{carRecord("ABC", "Charging")})
	v, _ := s.Value()
	if v != "Charging" {
		t.Fatalf("sensor must read the replaced snapshot, got %v", v)
	}
}

func TestSensor_UniqueID(t *testing.T) {
	s := NewSensor(nil, SensorDescription{Key: "last_state.display_name"}, "ABC", Device{})
	if got := s.UniqueID(); got != "ABC_last_state_display_name" {
		t.Fatalf("unexpected unique id %q", got)
	}
}
