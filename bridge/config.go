package bridge

import "fmt"

// Config defines the MQTT topic layout of the bridge.
type Config struct {
	// DiscoveryPrefix is the Home Assistant discovery prefix.
	DiscoveryPrefix string `json:"discovery_prefix"`
	// BaseTopic prefixes all state, command and availability topics.
	BaseTopic string `json:"base_topic"`
	// Retain controls whether state publications are retained.
	Retain bool `json:"retain"`
	// CommandTimeoutSeconds bounds one remote switch command.
	CommandTimeoutSeconds int `json:"command_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = "homeassistant"
	}
	if c.BaseTopic == "" {
		c.BaseTopic = "tessie2mqtt"
	}
	if c.CommandTimeoutSeconds <= 0 {
		c.CommandTimeoutSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.DiscoveryPrefix == "" {
		return fmt.Errorf("discovery_prefix is required")
	}
	if c.BaseTopic == "" {
		return fmt.Errorf("base_topic is required")
	}
	return nil
}

// AvailabilityTopic is where the bridge reports online/offline. The same
// topic should be configured as the MQTT last-will.
func (c Config) AvailabilityTopic() string {
	return c.BaseTopic + "/status"
}

func (c Config) stateTopic(uid string) string {
	return fmt.Sprintf("%s/%s/state", c.BaseTopic, uid)
}

func (c Config) commandTopic(uid string) string {
	return fmt.Sprintf("%s/%s/set", c.BaseTopic, uid)
}

func (c Config) discoveryTopic(component, uid string) string {
	return fmt.Sprintf("%s/%s/%s/config", c.DiscoveryPrefix, component, uid)
}
