package element

import "errors"

// Domain errors for the element package.
// Check with errors.Is().
var (
	// ErrControllerExists is returned when creating a controller under a
	// full name that already has a live controller.
	ErrControllerExists = errors.New("element: controller already exists")

	// ErrUnknownClass is returned when a controller class was never registered.
	ErrUnknownClass = errors.New("element: unknown controller class")

	// ErrElementExists is returned when adding an element with a taken id.
	ErrElementExists = errors.New("element: element already exists")

	// ErrElementNotFound is returned when an element id is unknown.
	ErrElementNotFound = errors.New("element: element not found")
)
