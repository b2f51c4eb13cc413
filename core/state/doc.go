// Package state holds the loosely-typed vehicle state snapshot and the
// dot-path helpers used to read and mutate it. Records arrive as raw JSON
// maps from the fleet source; entities address leaves inside them with
// dot-separated key paths such as "last_state.charge_state.charging_state".
package state
