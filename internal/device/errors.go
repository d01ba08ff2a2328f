package device

import "errors"

// Domain errors for the device package.
// Check with errors.Is().
var (
	// ErrUnknownAttribute is returned when an attribute name is not
	// declared on the device.
	ErrUnknownAttribute = errors.New("device: unknown attribute")

	// ErrChangeEventNotArmed is returned when relaxing the change
	// criteria of an attribute that does not push change events.
	ErrChangeEventNotArmed = errors.New("device: change event not armed")

	// ErrPublish wraps bus failures during event publication.
	ErrPublish = errors.New("device: publish failed")
)
