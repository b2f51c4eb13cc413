package entity

import "strings"

// Device is the association triple the host uses to group entities under a
// single physical vehicle.
type Device struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
}

// Entity is the minimal surface the bridge needs to register and render an
// adapter on the host platform.
type Entity interface {
	UniqueID() string
	Name() string
	Device() Device
}

// StateChanged is published on the event bus after an optimistic update so
// the host side re-renders the entity without waiting for the next poll.
type StateChanged struct {
	UniqueID string
}

// slug turns a record path into an identifier-safe suffix.
func slug(path string) string {
	return strings.NewReplacer(".", "_", " ", "_").Replace(strings.ToLower(path))
}
