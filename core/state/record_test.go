package state

import (
	"errors"
	"testing"
)

func chargingRecord() Record {
	return Record{
		"vin": "ABC",
		"last_state": map[string]any{
			"display_name": "Roadster",
			"charge_state": map[string]any{
				"charging_state": "Stopped",
				"battery_level":  float64(73),
			},
		},
	}
}

func TestGet_NestedLeaf(t *testing.T) {
	v, ok := Get(chargingRecord(), "last_state.charge_state.charging_state")
	if !ok || v != "Stopped" {
		t.Fatalf("got %v ok=%v", v, ok)
	}
}

func TestGet_MissingSegment(t *testing.T) {
	rec := chargingRecord()
	for _, path := range []string{
		"last_state.climate_state.inside_temp",
		"nope",
		"last_state.display_name.deeper",
		"",
	} {
		if v, ok := Get(rec, path); ok {
			t.Fatalf("path %q: expected absence, got %v", path, v)
		}
	}
}

func TestGet_NilRecord(t *testing.T) {
	if _, ok := Get(nil, "a.b"); ok {
		t.Fatalf("nil record must resolve to absence")
	}
}

func TestGetFloat(t *testing.T) {
	v, ok := GetFloat(chargingRecord(), "last_state.charge_state.battery_level")
	if !ok || v != 73 {
		t.Fatalf("got %v ok=%v", v, ok)
	}
	if _, ok := GetFloat(chargingRecord(), "last_state.display_name"); ok {
		t.Fatalf("string leaf must not resolve as float")
	}
}

func TestSet_CreatesIntermediates(t *testing.T) {
	rec := Record{}
	if err := Set(rec, "a.b.c", 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok := Get(rec, "a.b.c")
	if !ok || v != 5 {
		t.Fatalf("round trip failed: %v ok=%v", v, ok)
	}
}

func TestSet_RoundTrip(t *testing.T) {
	rec := chargingRecord()
	if err := Set(rec, "last_state.charge_state.charging_state", "Charging"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _ := Get(rec, "last_state.charge_state.charging_state")
	if v != "Charging" {
		t.Fatalf("got %v", v)
	}
}

func TestSet_NonMapIntermediate(t *testing.T) {
	rec := Record{"a": "leaf"}
	err := Set(rec, "a.b", 1)
	if !errors.Is(err, ErrNotAMap) {
		t.Fatalf("expected ErrNotAMap, got %v", err)
	}
	if rec["a"] != "leaf" {
		t.Fatalf("record mutated on error: %#v", rec)
	}
}
