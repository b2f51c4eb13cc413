package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrewgierens/tessie2mqtt/core/logger"
	"github.com/andrewgierens/tessie2mqtt/core/metrics"
	"github.com/andrewgierens/tessie2mqtt/core/state"
	"github.com/andrewgierens/tessie2mqtt/internal/eventbus"
)

// ActionFunc performs a remote command against the vehicle API. The token is
// an opaque credential threaded through from configuration.
type ActionFunc func(ctx context.Context, vin, token string) error

// SwitchDescription binds a record path to a boolean presentation and the
// remote actions driving its transitions.
type SwitchDescription struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	OnValue  string `json:"on_value"`
	OffValue string `json:"off_value"`
	Icon     string `json:"icon,omitempty"`

	Enable  ActionFunc `json:"-"`
	Disable ActionFunc `json:"-"`
}

// Switch maps a record leaf to an on/off state. Turning it on or off invokes
// the bound remote action and, on success, optimistically rewrites the
// cached snapshot so the host sees the expected value before the next poll.
type Switch struct {
	store  *state.Store
	desc   SwitchDescription
	vin    string
	token  string
	device Device
	bus    eventbus.EventBus
	sink   metrics.MetricsSink
	log    logger.Logger
}

// NewSwitch builds a switch for the vehicle identified by vin. The bus and
// sink may be nil in tests.
func NewSwitch(store *state.Store, desc SwitchDescription, vin, token string, device Device, bus eventbus.EventBus, sink metrics.MetricsSink, log logger.Logger) *Switch {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Switch{store: store, desc: desc, vin: vin, token: token, device: device, bus: bus, sink: sink, log: log}
}

func (s *Switch) UniqueID() string {
	return fmt.Sprintf("%s_%s_switch", s.vin, slug(s.desc.Key))
}

func (s *Switch) Name() string { return s.desc.Name }

func (s *Switch) Device() Device { return s.device }

// Description returns the static configuration of the switch.
func (s *Switch) Description() SwitchDescription { return s.desc }

// IsOn reports whether the leaf at the configured path equals the "on"
// value. Absence of the record or the path maps to off.
func (s *Switch) IsOn() bool {
	v, ok := state.GetString(s.store.Find(s.vin), s.desc.Key)
	return ok && v == s.desc.OnValue
}

// TurnOn invokes the enable action and optimistically records the "on"
// value locally. An unset action is a no-op; an action error propagates
// unchanged and leaves the snapshot untouched.
func (s *Switch) TurnOn(ctx context.Context) error {
	return s.turn(ctx, "on", s.desc.Enable, s.desc.OnValue)
}

// TurnOff is the symmetric transition using the disable action.
func (s *Switch) TurnOff(ctx context.Context) error {
	return s.turn(ctx, "off", s.desc.Disable, s.desc.OffValue)
}

func (s *Switch) turn(ctx context.Context, action string, fn ActionFunc, value string) error {
	if fn == nil {
		return nil
	}
	cmdID := uuid.NewString()
	// Capture the version before the remote call: a poll completing while
	// the call is in flight invalidates the optimistic write.
	version := s.store.Snapshot().Version
	start := time.Now()
	err := fn(ctx, s.vin, s.token)
	ev := metrics.CommandEvent{
		CommandID: cmdID,
		VehicleID: s.vin,
		UniqueID:  s.UniqueID(),
		Action:    action,
		Success:   err == nil,
		Latency:   time.Since(start),
		Time:      time.Now(),
	}
	if err != nil {
		if recErr := s.sink.RecordCommand(ev); recErr != nil && s.log != nil {
			s.log.Errorf("record command: %v", recErr)
		}
		return fmt.Errorf("switch %s %s: %w", s.UniqueID(), action, err)
	}
	ev.Applied = s.store.Mutate(version, s.vin, s.desc.Key, value)
	if !ev.Applied && s.log != nil {
		s.log.Debugw("optimistic update dropped", map[string]any{
			"vin": s.vin, "key": s.desc.Key, "version": version,
		})
	}
	if recErr := s.sink.RecordCommand(ev); recErr != nil && s.log != nil {
		s.log.Errorf("record command: %v", recErr)
	}
	if s.bus != nil {
		s.bus.Publish(StateChanged{UniqueID: s.UniqueID()})
	}
	return nil
}
