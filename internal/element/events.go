package element

// EventType identifies a controller-internal change notification.
//
// Priority semantics match the attribute push path:
//   - 0: cache-only, observers are not notified
//   - 1: normal notification
//   - >1: urgent - duplicate suppression is lifted for the delivery
type EventType struct {
	Name     string
	Priority int
}

// Common event types fired by controllers.
var (
	// StateEvent signals a controller state change.
	StateEvent = EventType{Name: "state", Priority: 1}

	// StatusEvent signals a controller status text change.
	StatusEvent = EventType{Name: "status", Priority: 1}

	// ElementListEvent signals a change in the set of child elements.
	ElementListEvent = EventType{Name: "elementlist", Priority: 1}
)

// Listener receives controller-internal change notifications.
//
// Callbacks run on the goroutine that triggered the change. They may
// re-enter the controller (the listener list is snapshotted before the
// fan-out) but should not block for long.
type Listener interface {
	OnElementEvent(src *Controller, evt EventType, value any)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(src *Controller, evt EventType, value any)

// OnElementEvent calls f.
func (f ListenerFunc) OnElementEvent(src *Controller, evt EventType, value any) {
	f(src, evt, value)
}
