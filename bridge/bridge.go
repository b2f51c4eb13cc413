package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/andrewgierens/tessie2mqtt/core/entity"
	"github.com/andrewgierens/tessie2mqtt/core/fleet"
	"github.com/andrewgierens/tessie2mqtt/core/logger"
	"github.com/andrewgierens/tessie2mqtt/infra/mqtt"
	"github.com/andrewgierens/tessie2mqtt/internal/eventbus"
)

// Publisher is the MQTT surface the bridge needs. It is implemented by
// infra/mqtt.Client and by in-memory fakes in tests.
type Publisher interface {
	Publish(topic string, payload []byte, retain bool) error
	Subscribe(topic string, handler mqtt.MessageHandler) error
}

// Sensor is any entity exposing a raw pull-based value.
type Sensor interface {
	entity.Entity
	Value() (any, bool)
}

// SensorMeta carries the display metadata published in the discovery config.
type SensorMeta struct {
	Unit        string
	DeviceClass string
	StateClass  string
	Icon        string
}

type boundSensor struct {
	sensor Sensor
	meta   SensorMeta
}

// Bridge connects entity adapters to the MQTT host side.
type Bridge struct {
	pub      Publisher
	cfg      Config
	bus      eventbus.EventBus
	log      logger.Logger
	sensors  []boundSensor
	switches map[string]*entity.Switch
}

// New creates a Bridge. Entities are added before Setup; the publisher may
// be installed later via SetPublisher when the MQTT connection callback
// needs the bridge to exist first.
func New(pub Publisher, cfg Config, bus eventbus.EventBus, log logger.Logger) *Bridge {
	return &Bridge{pub: pub, cfg: cfg, bus: bus, log: log, switches: map[string]*entity.Switch{}}
}

// SetPublisher installs the MQTT publisher.
func (b *Bridge) SetPublisher(pub Publisher) { b.pub = pub }

// AddSensor registers a sensor entity for discovery and state publication.
func (b *Bridge) AddSensor(s Sensor, meta SensorMeta) {
	b.sensors = append(b.sensors, boundSensor{sensor: s, meta: meta})
}

// AddSwitch registers a switch entity, including its command topic.
func (b *Bridge) AddSwitch(sw *entity.Switch) {
	b.switches[sw.UniqueID()] = sw
}

// Setup publishes availability and retained discovery configs, subscribes
// the switch command topics and renders the initial state of every entity.
// It is safe to call again after an MQTT reconnection.
func (b *Bridge) Setup() error {
	if b.pub == nil {
		return nil
	}
	if err := b.pub.Publish(b.cfg.AvailabilityTopic(), []byte(payloadOnline), true); err != nil {
		return fmt.Errorf("publish availability: %w", err)
	}
	if err := b.publishDiscovery(); err != nil {
		return err
	}
	for uid := range b.switches {
		topic := b.cfg.commandTopic(uid)
		uid := uid
		if err := b.pub.Subscribe(topic, func(_ string, payload []byte) {
			b.handleCommand(uid, payload)
		}); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	b.publishAllStates()
	return nil
}

// Run processes bus events until the context is cancelled, then marks the
// bridge offline.
func (b *Bridge) Run(ctx context.Context) error {
	events := b.bus.Subscribe()
	defer b.bus.Unsubscribe(events)
	for {
		select {
		case <-ctx.Done():
			if err := b.pub.Publish(b.cfg.AvailabilityTopic(), []byte(payloadOffline), true); err != nil {
				b.log.Errorf("publish offline: %v", err)
			}
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch e := ev.(type) {
			case fleet.Refreshed:
				b.publishAllStates()
			case entity.StateChanged:
				b.publishState(e.UniqueID)
			}
		}
	}
}

func (b *Bridge) publishDiscovery() error {
	for _, bs := range b.sensors {
		uid := bs.sensor.UniqueID()
		payload, err := json.Marshal(sensorDiscovery{
			Name:              bs.sensor.Name(),
			UniqueID:          uid,
			StateTopic:        b.cfg.stateTopic(uid),
			AvailabilityTopic: b.cfg.AvailabilityTopic(),
			UnitOfMeasurement: bs.meta.Unit,
			DeviceClass:       bs.meta.DeviceClass,
			StateClass:        bs.meta.StateClass,
			Icon:              bs.meta.Icon,
			Device:            bs.sensor.Device(),
		})
		if err != nil {
			return err
		}
		if err := b.pub.Publish(b.cfg.discoveryTopic("sensor", uid), payload, true); err != nil {
			return fmt.Errorf("discovery %s: %w", uid, err)
		}
	}
	for uid, sw := range b.switches {
		payload, err := json.Marshal(switchDiscovery{
			Name:              sw.Name(),
			UniqueID:          uid,
			StateTopic:        b.cfg.stateTopic(uid),
			CommandTopic:      b.cfg.commandTopic(uid),
			AvailabilityTopic: b.cfg.AvailabilityTopic(),
			PayloadOn:         payloadOn,
			PayloadOff:        payloadOff,
			Icon:              sw.Description().Icon,
			Device:            sw.Device(),
		})
		if err != nil {
			return err
		}
		if err := b.pub.Publish(b.cfg.discoveryTopic("switch", uid), payload, true); err != nil {
			return fmt.Errorf("discovery %s: %w", uid, err)
		}
	}
	return nil
}

func (b *Bridge) publishAllStates() {
	for _, bs := range b.sensors {
		b.publishSensorState(bs.sensor)
	}
	for uid := range b.switches {
		b.publishState(uid)
	}
}

// publishState renders the entity identified by uid. Sensors with an absent
// value are skipped so the host keeps showing the last known state.
func (b *Bridge) publishState(uid string) {
	if sw, ok := b.switches[uid]; ok {
		state := payloadOff
		if sw.IsOn() {
			state = payloadOn
		}
		if err := b.pub.Publish(b.cfg.stateTopic(uid), []byte(state), b.cfg.Retain); err != nil {
			b.log.Errorf("publish state %s: %v", uid, err)
		}
		return
	}
	for _, bs := range b.sensors {
		if bs.sensor.UniqueID() == uid {
			b.publishSensorState(bs.sensor)
			return
		}
	}
}

func (b *Bridge) publishSensorState(s Sensor) {
	v, ok := s.Value()
	if !ok {
		return
	}
	if err := b.pub.Publish(b.cfg.stateTopic(s.UniqueID()), []byte(renderValue(v)), b.cfg.Retain); err != nil {
		b.log.Errorf("publish state %s: %v", s.UniqueID(), err)
	}
}

// handleCommand maps an inbound ON/OFF payload onto a switch transition.
// The remote call runs outside the MQTT callback; a failure republishes the
// real state so the host UI snaps back.
func (b *Bridge) handleCommand(uid string, payload []byte) {
	sw, ok := b.switches[uid]
	if !ok {
		return
	}
	var transition func(context.Context) error
	switch string(payload) {
	case payloadOn:
		transition = sw.TurnOn
	case payloadOff:
		transition = sw.TurnOff
	default:
		b.log.Warnf("unknown command payload %q for %s", payload, uid)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(b.cfg.CommandTimeoutSeconds)*time.Second)
		defer cancel()
		if err := transition(ctx); err != nil {
			b.log.Errorf("command %s: %v", uid, err)
			b.publishState(uid)
		}
	}()
}

func renderValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(data)
	}
}
