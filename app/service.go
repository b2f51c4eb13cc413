package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrewgierens/tessie2mqtt/bridge"
	"github.com/andrewgierens/tessie2mqtt/config"
	"github.com/andrewgierens/tessie2mqtt/core/entity"
	"github.com/andrewgierens/tessie2mqtt/core/fleet"
	coremetrics "github.com/andrewgierens/tessie2mqtt/core/metrics"
	"github.com/andrewgierens/tessie2mqtt/core/state"
	"github.com/andrewgierens/tessie2mqtt/core/telemetry"
	"github.com/andrewgierens/tessie2mqtt/infra/logger"
	"github.com/andrewgierens/tessie2mqtt/infra/metrics"
	"github.com/andrewgierens/tessie2mqtt/infra/mqtt"
	"github.com/andrewgierens/tessie2mqtt/internal/eventbus"
	"github.com/andrewgierens/tessie2mqtt/simulator"
)

const manufacturer = "Tesla"

// actionPair binds the enable and disable remote actions of a switch.
type actionPair struct {
	enable  entity.ActionFunc
	disable entity.ActionFunc
}

// Service orchestrates the poller, the entities and the MQTT bridge.
type Service struct {
	cfg     *config.Config
	store   *state.Store
	bus     eventbus.EventBus
	poller  *fleet.Poller
	sink    coremetrics.MetricsSink
	actions map[string]actionPair
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store := state.NewStore(cfg.Fleet.IDField)
	bus := eventbus.New()

	var src fleet.Source
	actions := map[string]actionPair{}
	switch cfg.Fleet.Source {
	case "sim":
		fl := simulator.NewFleet(cfg.Fleet.Simulator)
		src = fl
		actions["charging"] = actionPair{enable: fl.StartCharging, disable: fl.StopCharging}
	default:
		return nil, fmt.Errorf("unknown fleet source %q", cfg.Fleet.Source)
	}

	interval := time.Duration(cfg.Fleet.PollIntervalSeconds) * time.Second
	poller := fleet.NewPoller(src, store, bus, sink, logger.New("poller"), interval, cfg.Fleet.TelemetryKeys)

	return &Service{cfg: cfg, store: store, bus: bus, poller: poller, sink: sink, actions: actions, log: logg}, nil
}

// Run performs the initial fetch, builds the entities for every discovered
// vehicle, connects to the broker and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.poller.Refresh(ctx)

	br := bridge.New(nil, s.cfg.Bridge, s.bus, logger.New("bridge"))
	if err := s.buildEntities(br); err != nil {
		return err
	}

	mqttCfg := s.cfg.MQTT
	if mqttCfg.ClientID == "" {
		mqttCfg.ClientID = fmt.Sprintf("tessie2mqtt-%s", uuid.NewString()[:8])
	}
	if mqttCfg.LWTTopic == "" {
		mqttCfg.LWTTopic = s.cfg.Bridge.AvailabilityTopic()
		mqttCfg.LWTPayload = "offline"
		mqttCfg.LWTRetain = true
	}
	client, err := mqtt.NewClient(mqttCfg, func() {
		// Re-run setup on every (re)connection so subscriptions survive.
		if err := br.Setup(); err != nil {
			s.log.Errorf("bridge setup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()
	br.SetPublisher(client)
	if err := br.Setup(); err != nil {
		return fmt.Errorf("bridge setup: %w", err)
	}

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	go func() {
		if err := s.poller.Run(ctx); err != nil && ctx.Err() == nil {
			s.log.Errorf("poller: %v", err)
		}
	}()
	err = br.Run(ctx)
	if err == context.Canceled {
		err = nil
	}
	return err
}

// buildEntities creates sensors and switches for every vehicle in the
// current snapshot, plus the configured fleet aggregates.
func (s *Service) buildEntities(br *bridge.Bridge) error {
	snap := s.store.Snapshot()
	if len(snap.Records) == 0 {
		s.log.Warnf("no vehicles in initial snapshot")
	}
	idField := s.store.IDField()
	for _, rec := range snap.Records {
		vin, ok := state.GetString(rec, idField)
		if !ok {
			s.log.Warnf("record without %s field, skipping", idField)
			continue
		}
		name, _ := state.GetString(rec, "last_state.display_name")
		if name == "" {
			name = vin
		}
		model, _ := state.GetString(rec, "last_state.vehicle_config.car_type")
		device := entity.Device{
			Identifiers:  []string{"tessie2mqtt_" + vin},
			Manufacturer: manufacturer,
			Model:        model,
			Name:         name,
		}
		for _, desc := range s.cfg.Entities.Sensors {
			sensor := entity.NewSensor(s.store, desc, vin, device)
			br.AddSensor(sensor, bridge.SensorMeta{
				Unit:        desc.Unit,
				DeviceClass: desc.DeviceClass,
				StateClass:  desc.StateClass,
				Icon:        desc.Icon,
			})
		}
		for _, sc := range s.cfg.Entities.Switches {
			pair, ok := s.actions[sc.Action]
			if !ok {
				return fmt.Errorf("switch %q: unknown action %q", sc.Key, sc.Action)
			}
			desc := entity.SwitchDescription{
				Key:      sc.Key,
				Name:     sc.Name,
				OnValue:  sc.OnValue,
				OffValue: sc.OffValue,
				Icon:     sc.Icon,
				Enable:   pair.enable,
				Disable:  pair.disable,
			}
			sw := entity.NewSwitch(s.store, desc, vin, s.cfg.Fleet.Token, device, s.bus, s.sink, logger.New("switch"))
			br.AddSwitch(sw)
		}
	}
	if len(s.cfg.Entities.Aggregates) > 0 {
		fleetDevice := entity.Device{
			Identifiers:  []string{"tessie2mqtt_fleet"},
			Manufacturer: manufacturer,
			Model:        "Fleet",
			Name:         "Vehicle Fleet",
		}
		for _, desc := range s.cfg.Entities.Aggregates {
			agg := telemetry.NewFleetSensor(s.store, desc, fleetDevice)
			br.AddSensor(agg, bridge.SensorMeta{Unit: desc.Unit, StateClass: "measurement"})
		}
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return nil
}
