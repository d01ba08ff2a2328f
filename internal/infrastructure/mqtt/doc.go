// Package mqtt wraps paho.mqtt.golang for the Spectra device bus.
//
// # Topic hierarchy
//
//	spectra/event/{device}/{attribute}   attribute change events (not retained)
//	spectra/state/{device}               retained device state document
//	spectra/status/{device}              retained device status document
//	spectra/system/status                service online/offline, with LWT
//
// # Connection management
//
// The client auto-reconnects with exponential backoff and restores all
// subscriptions after a reconnect. A Last Will and Testament on the
// system status topic lets observers distinguish a crashed core from a
// gracefully stopped one.
package mqtt
