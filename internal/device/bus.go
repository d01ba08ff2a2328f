package device

import "time"

// Bus is the notification transport a device publishes through. The MQTT
// implementation lives in internal/busmqtt; tests substitute a fake.
//
// Implementations must be safe for concurrent use. The device serialises
// its own pushes per device, but distinct devices share one bus.
type Bus interface {
	// PushChangeEvent publishes a bare change notification for the named
	// attribute, carrying no value. Used for the state and status
	// attributes, whose current value observers read from the retained
	// state document instead.
	PushChangeEvent(device, attr string) error

	// PushChangeEventValue publishes a change notification carrying a
	// value with its timestamp and quality.
	PushChangeEventValue(device, attr string, value any, ts time.Time, quality Quality) error

	// PushChangeEventEncoded publishes a change notification for an
	// encoded attribute: format tag and payload travel as two parts.
	PushChangeEventEncoded(device, attr, format string, data []byte, ts time.Time, quality Quality) error

	// PushChangeEventError publishes an error notification for the named
	// attribute. No value accompanies it.
	PushChangeEventError(device, attr string, err error) error

	// SetState publishes the retained device state document.
	SetState(device string, state State) error

	// SetStatus publishes the retained device status document.
	SetStatus(device, status string) error
}
