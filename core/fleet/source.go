package fleet

import (
	"context"

	"github.com/andrewgierens/tessie2mqtt/core/state"
)

// Source produces a full snapshot of vehicle state records. The concrete
// vehicle API client is external to this module; the simulator provides an
// in-process implementation for development and tests.
type Source interface {
	Fetch(ctx context.Context) ([]state.Record, error)
}

// Refreshed is published on the event bus after a snapshot replacement.
type Refreshed struct {
	Version  uint64
	Vehicles int
}
