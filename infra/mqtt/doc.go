// Package mqtt wraps the Eclipse Paho client behind a small publish and
// subscribe surface with TLS, last-will and retrying publishes. The bridge
// package builds its Home Assistant topic plumbing on top of it.
package mqtt
