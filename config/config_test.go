package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  broker: tcp://localhost:1883
  client_id: test
bridge:
  base_topic: cars
fleet:
  poll_interval_seconds: 5
  token: secret
entities:
  sensors:
    - key: last_state.display_name
      name: Display Name
  switches:
    - key: last_state.charge_state.charging_state
      name: Charger
      on_value: Charging
      off_value: Stopped
      action: charging
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "cars", cfg.Bridge.BaseTopic)
	assert.Equal(t, "homeassistant", cfg.Bridge.DiscoveryPrefix)
	assert.Equal(t, 5, cfg.Fleet.PollIntervalSeconds)
	assert.Equal(t, "sim", cfg.Fleet.Source)
	assert.Equal(t, "vin", cfg.Fleet.IDField)
	require.Len(t, cfg.Entities.Switches, 1)
	assert.Equal(t, "Charging", cfg.Entities.Switches[0].OnValue)
	// aggregates fall back to the built-in set
	assert.NotEmpty(t, cfg.Entities.Aggregates)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"mqtt":{"broker":"tcp://broker:1883"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	// defaults installed for everything else
	assert.Equal(t, "tessie2mqtt", cfg.Bridge.BaseTopic)
	assert.NotEmpty(t, cfg.Entities.Sensors)
	assert.NotEmpty(t, cfg.Entities.Switches)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "broker = 1")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  broker: tcp://localhost:1883
`)
	t.Setenv("T2M_BRIDGE__BASE_TOPIC", "garage")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "garage", cfg.Bridge.BaseTopic)
}

func TestLoad_InvalidSwitch(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
entities:
  switches:
    - key: last_state.charge_state.charging_state
      name: Charger
      on_value: Charging
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidAggregateStat(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
entities:
  aggregates:
    - key: last_state.charge_state.battery_level
      name: Median Battery
      stat: median
`)
	_, err := Load(path)
	require.Error(t, err)
}
