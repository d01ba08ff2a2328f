// Package busmqtt binds the device notification transport to MQTT.
//
// Each attribute change event is a JSON envelope on
// spectra/event/{device}/{attribute}, tagged with a unique id, the event
// kind (change or error), timestamp, and quality. Encoded attributes
// carry their format tag and base64 payload as separate envelope fields.
//
// State and status are retained documents on spectra/state/{device} and
// spectra/status/{device}. Their change events are published bare, the
// retained document is the value.
package busmqtt
