// Package telemetry derives fleet-level statistics from the current
// snapshot. Aggregates are exposed to the host as regular sensors attached
// to a virtual fleet device.
package telemetry

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/andrewgierens/tessie2mqtt/core/entity"
	"github.com/andrewgierens/tessie2mqtt/core/state"
)

// Stat selects the statistic computed over the fleet values.
type Stat string

const (
	StatMean   Stat = "mean"
	StatStdDev Stat = "stddev"
	StatMin    Stat = "min"
	StatMax    Stat = "max"
	StatSum    Stat = "sum"
)

// AggregateDescription configures one fleet-level statistic over a numeric
// record path.
type AggregateDescription struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
	Stat Stat   `json:"stat"`
}

// Validate checks the statistic selector.
func (d AggregateDescription) Validate() error {
	switch d.Stat {
	case StatMean, StatStdDev, StatMin, StatMax, StatSum:
		return nil
	case "":
		return fmt.Errorf("aggregate %q: stat is required", d.Key)
	default:
		return fmt.Errorf("aggregate %q: unknown stat %q", d.Key, d.Stat)
	}
}

// FleetSensor computes a statistic over the configured path across every
// record of the current snapshot. Records missing the path are skipped; an
// empty sample maps to the unknown state.
type FleetSensor struct {
	store  *state.Store
	desc   AggregateDescription
	device entity.Device
}

// NewFleetSensor builds an aggregate sensor bound to the virtual fleet
// device.
func NewFleetSensor(store *state.Store, desc AggregateDescription, device entity.Device) *FleetSensor {
	return &FleetSensor{store: store, desc: desc, device: device}
}

func (s *FleetSensor) UniqueID() string {
	key := strings.ReplaceAll(s.desc.Key, ".", "_")
	return fmt.Sprintf("fleet_%s_%s", s.desc.Stat, key)
}

func (s *FleetSensor) Name() string { return s.desc.Name }

func (s *FleetSensor) Device() entity.Device { return s.device }

// Description returns the static configuration of the aggregate.
func (s *FleetSensor) Description() AggregateDescription { return s.desc }

// Value computes the configured statistic over the current snapshot.
func (s *FleetSensor) Value() (any, bool) {
	snap := s.store.Snapshot()
	xs := make([]float64, 0, len(snap.Records))
	for _, rec := range snap.Records {
		if v, ok := state.GetFloat(rec, s.desc.Key); ok {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil, false
	}
	switch s.desc.Stat {
	case StatMean:
		return stat.Mean(xs, nil), true
	case StatStdDev:
		if len(xs) < 2 {
			return 0.0, true
		}
		return math.Sqrt(stat.Variance(xs, nil)), true
	case StatMin:
		return floats.Min(xs), true
	case StatMax:
		return floats.Max(xs), true
	case StatSum:
		return floats.Sum(xs), true
	}
	return nil, false
}
