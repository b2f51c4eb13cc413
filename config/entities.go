package config

import (
	"fmt"

	"github.com/andrewgierens/tessie2mqtt/core/entity"
	"github.com/andrewgierens/tessie2mqtt/core/telemetry"
)

// SwitchConfig describes a switch entity. The remote actions are bound by
// name at wiring time since function values cannot live in a config file.
type SwitchConfig struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	OnValue  string `json:"on_value"`
	OffValue string `json:"off_value"`
	Icon     string `json:"icon,omitempty"`
	// Action names the remote action pair, e.g. "charging".
	Action string `json:"action"`
}

// EntitiesConfig lists the entities exposed per vehicle plus fleet-level
// aggregates.
type EntitiesConfig struct {
	Sensors    []entity.SensorDescription       `json:"sensors"`
	Switches   []SwitchConfig                   `json:"switches"`
	Aggregates []telemetry.AggregateDescription `json:"aggregates"`
}

// SetDefaults installs the built-in entity set when nothing is configured:
// the display name and battery level sensors, the charging switch and a
// fleet-wide mean battery aggregate.
func (c *EntitiesConfig) SetDefaults() {
	if len(c.Sensors) == 0 {
		c.Sensors = []entity.SensorDescription{
			{Key: "last_state.display_name", Name: "Display Name"},
			{Key: "last_state.charge_state.battery_level", Name: "Battery Level", Unit: "%", DeviceClass: "battery", StateClass: "measurement"},
		}
	}
	if len(c.Switches) == 0 {
		c.Switches = []SwitchConfig{
			{
				Key:      "last_state.charge_state.charging_state",
				Name:     "Charger",
				OnValue:  "Charging",
				OffValue: "Stopped",
				Action:   "charging",
				Icon:     "mdi:ev-station",
			},
		}
	}
	if len(c.Aggregates) == 0 {
		c.Aggregates = []telemetry.AggregateDescription{
			{Key: "last_state.charge_state.battery_level", Name: "Fleet Mean Battery", Unit: "%", Stat: telemetry.StatMean},
		}
	}
}

// Validate checks every configured entity.
func (c EntitiesConfig) Validate() error {
	for _, s := range c.Sensors {
		if s.Key == "" || s.Name == "" {
			return fmt.Errorf("sensor %+v: key and name are required", s)
		}
	}
	for _, s := range c.Switches {
		if s.Key == "" || s.Name == "" {
			return fmt.Errorf("switch %+v: key and name are required", s)
		}
		if s.OnValue == "" || s.OffValue == "" {
			return fmt.Errorf("switch %q: on_value and off_value are required", s.Key)
		}
		if s.Action == "" {
			return fmt.Errorf("switch %q: action is required", s.Key)
		}
	}
	for _, a := range c.Aggregates {
		if a.Key == "" || a.Name == "" {
			return fmt.Errorf("aggregate %+v: key and name are required", a)
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}
