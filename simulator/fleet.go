// Package simulator provides an in-process fleet source with simple
// charging dynamics. It stands in for the external vehicle API during
// development and in tests; the real API client stays outside this module.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/andrewgierens/tessie2mqtt/core/state"
)

// Config holds parameters for fleet generation.
type Config struct {
	// Size is the number of simulated vehicles.
	Size int `json:"size"`
	// ChargeRatePct is the battery percentage gained per minute of charging.
	ChargeRatePct float64 `json:"charge_rate_pct"`
	// ActionFailureRate injects remote action failures in [0,1].
	ActionFailureRate float64 `json:"action_failure_rate"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 3
	}
	if c.ChargeRatePct <= 0 {
		c.ChargeRatePct = 0.5
	}
}

type vehicle struct {
	vin      string
	name     string
	carType  string
	battery  float64
	charging bool
	lastTick time.Time
}

// Fleet simulates a set of vehicles. Fetch snapshots their state as raw
// records shaped like the vehicle API response; StartCharging and
// StopCharging mutate the server-side truth so the next fetch is
// authoritative.
type Fleet struct {
	mu       sync.Mutex
	cfg      Config
	vehicles []*vehicle
	rng      *rand.Rand
}

// NewFleet generates cfg.Size vehicles with VINs SIM0001..SIMNNNN.
func NewFleet(cfg Config) *Fleet {
	cfg.SetDefaults()
	f := &Fleet{cfg: cfg, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	now := time.Now()
	for i := 0; i < cfg.Size; i++ {
		f.vehicles = append(f.vehicles, &vehicle{
			vin:      fmt.Sprintf("SIM%04d", i+1),
			name:     fmt.Sprintf("Simulated Car %d", i+1),
			carType:  "models",
			battery:  40 + f.rng.Float64()*50,
			lastTick: now,
		})
	}
	return f
}

// Fetch returns one record per vehicle, advancing charge levels first.
func (f *Fleet) Fetch(_ context.Context) ([]state.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	records := make([]state.Record, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		f.tick(v, now)
		records = append(records, f.record(v))
	}
	return records, nil
}

func (f *Fleet) tick(v *vehicle, now time.Time) {
	if v.charging {
		elapsed := now.Sub(v.lastTick).Minutes()
		v.battery += elapsed * f.cfg.ChargeRatePct
		if v.battery >= 100 {
			v.battery = 100
			v.charging = false
		}
	}
	v.lastTick = now
}

func (f *Fleet) record(v *vehicle) state.Record {
	chargingState := "Stopped"
	if v.charging {
		chargingState = "Charging"
	}
	return state.Record{
		"vin": v.vin,
		"last_state": map[string]any{
			"display_name": v.name,
			"vehicle_config": map[string]any{
				"car_type": v.carType,
			},
			"charge_state": map[string]any{
				"charging_state": chargingState,
				"battery_level":  v.battery,
				"charge_rate":    f.cfg.ChargeRatePct,
			},
		},
	}
}

// StartCharging is an ActionFunc-compatible remote command.
func (f *Fleet) StartCharging(_ context.Context, vin, _ string) error {
	return f.setCharging(vin, true)
}

// StopCharging is the symmetric remote command.
func (f *Fleet) StopCharging(_ context.Context, vin, _ string) error {
	return f.setCharging(vin, false)
}

func (f *Fleet) setCharging(vin string, charging bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cfg.ActionFailureRate > 0 && f.rng.Float64() < f.cfg.ActionFailureRate {
		return fmt.Errorf("simulated action failure for %s", vin)
	}
	for _, v := range f.vehicles {
		if v.vin == vin {
			v.lastTick = time.Now()
			v.charging = charging
			return nil
		}
	}
	return fmt.Errorf("unknown vehicle %s", vin)
}
