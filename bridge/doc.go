// Package bridge exposes entity adapters to Home Assistant over MQTT
// discovery. It publishes retained discovery configs and per-entity state
// topics, and maps inbound command topics onto switch transitions. Snapshot
// refreshes and optimistic state changes arrive over the internal event bus
// and trigger re-publication, the MQTT equivalent of asking the host to
// re-render an entity.
package bridge
