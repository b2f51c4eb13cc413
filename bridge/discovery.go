package bridge

import "github.com/andrewgierens/tessie2mqtt/core/entity"

// sensorDiscovery is the Home Assistant MQTT discovery payload for a sensor.
type sensorDiscovery struct {
	Name              string        `json:"name"`
	UniqueID          string        `json:"unique_id"`
	StateTopic        string        `json:"state_topic"`
	AvailabilityTopic string        `json:"availability_topic"`
	UnitOfMeasurement string        `json:"unit_of_measurement,omitempty"`
	DeviceClass       string        `json:"device_class,omitempty"`
	StateClass        string        `json:"state_class,omitempty"`
	Icon              string        `json:"icon,omitempty"`
	Device            entity.Device `json:"device"`
}

// switchDiscovery is the discovery payload for a switch.
type switchDiscovery struct {
	Name              string        `json:"name"`
	UniqueID          string        `json:"unique_id"`
	StateTopic        string        `json:"state_topic"`
	CommandTopic      string        `json:"command_topic"`
	AvailabilityTopic string        `json:"availability_topic"`
	PayloadOn         string        `json:"payload_on"`
	PayloadOff        string        `json:"payload_off"`
	Icon              string        `json:"icon,omitempty"`
	Device            entity.Device `json:"device"`
}

const (
	payloadOn      = "ON"
	payloadOff     = "OFF"
	payloadOnline  = "online"
	payloadOffline = "offline"
)
