// Package entity projects vehicle state records into host-facing entities.
// A Sensor exposes one record path as a read-only value; a Switch maps a
// path to an on/off state and binds remote actions to its transitions. Both
// re-locate their record in the current snapshot on every read, so a poll
// replacing the snapshot is picked up without any registration churn.
package entity
