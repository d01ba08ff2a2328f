package workpool

import "errors"

// Domain errors for the workpool package.
// Check with errors.Is().
var (
	// ErrQueueFull is returned by Submit when the task queue is at capacity.
	// The notification path treats this as a dropped event, not a fault.
	ErrQueueFull = errors.New("workpool: task queue full")

	// ErrPoolClosed is returned by Submit after Shutdown has been called.
	ErrPoolClosed = errors.New("workpool: pool closed")

	// ErrAlreadyStarted is returned by Configure once the shared pool exists.
	ErrAlreadyStarted = errors.New("workpool: shared pool already started")
)
