package entity

import (
	"fmt"

	"github.com/andrewgierens/tessie2mqtt/core/state"
)

// SensorDescription pairs a record path with the static metadata the host
// needs to display it.
type SensorDescription struct {
	// Key is the dot-separated path of the leaf inside the record.
	Key         string `json:"key"`
	Name        string `json:"name"`
	Unit        string `json:"unit,omitempty"`
	DeviceClass string `json:"device_class,omitempty"`
	StateClass  string `json:"state_class,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Sensor exposes a single record leaf as a read-only value. Reads are
// pull-based and never cached: every call re-locates the record in the
// current snapshot and resolves the path again.
type Sensor struct {
	store  *state.Store
	desc   SensorDescription
	vin    string
	device Device
}

// NewSensor builds a sensor for the vehicle identified by vin.
func NewSensor(store *state.Store, desc SensorDescription, vin string, device Device) *Sensor {
	return &Sensor{store: store, desc: desc, vin: vin, device: device}
}

func (s *Sensor) UniqueID() string {
	return fmt.Sprintf("%s_%s", s.vin, slug(s.desc.Key))
}

func (s *Sensor) Name() string { return s.desc.Name }

func (s *Sensor) Device() Device { return s.device }

// Description returns the static configuration of the sensor.
func (s *Sensor) Description() SensorDescription { return s.desc }

// Value resolves the configured path against the located record. A missing
// record or missing path yields (nil, false), the host's "unknown" state.
func (s *Sensor) Value() (any, bool) {
	return state.Get(s.store.Find(s.vin), s.desc.Key)
}
