package config

import (
	"fmt"

	"github.com/andrewgierens/tessie2mqtt/simulator"
)

// FleetConfig selects the fleet source and the polling behaviour.
type FleetConfig struct {
	// Source selects the fleet source implementation. Only "sim" is built
	// in; real API clients register themselves at wiring time.
	Source string `json:"source"`
	// PollIntervalSeconds is the snapshot refresh period.
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	// IDField is the record field identifying a vehicle.
	IDField string `json:"id_field"`
	// Token is the opaque credential handed to remote actions.
	Token string `json:"token"`
	// TelemetryKeys are numeric record paths exported to telemetry sinks.
	TelemetryKeys []string `json:"telemetry_keys"`

	Simulator simulator.Config `json:"simulator"`
}

// SetDefaults applies sane defaults.
func (c *FleetConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = "sim"
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 30
	}
	if c.IDField == "" {
		c.IDField = "vin"
	}
	c.Simulator.SetDefaults()
}

// Validate checks mandatory fields.
func (c FleetConfig) Validate() error {
	if c.Source != "sim" {
		return fmt.Errorf("unknown fleet source %q", c.Source)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive")
	}
	return nil
}
