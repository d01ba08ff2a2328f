// Package device implements the synchronisation facade between
// in-process elements and their observers on the message bus.
//
// # Architecture
//
//	              SetAttribute(name, Update)
//	                        │
//	          ┌─────────────┴─────────────┐
//	          │ Sync                      │ Async
//	          ▼                           ▼
//	   calling goroutine          shared worker pool
//	          │                    (full queue: drop + warn)
//	          └─────────────┬─────────────┘
//	                        ▼
//	              ┌───────────────────┐
//	              │  push lock        │  reentrant, per device,
//	              │  (Priority > 0)   │  taken on both paths
//	              └─────────┬─────────┘
//	                        ▼
//	              publication algorithm
//	       error │ state/status │ encoded │ value
//	             ▼              ▼         ▼
//	                     Bus (MQTT)
//
// # Publication rules
//
// Priority 0 caches the value without notifying. Priority 1 notifies
// normally. Above 1 the attribute's duplicate suppression is lifted for
// the delivery and restored unconditionally afterwards, so an identical
// value still reaches observers.
//
// State and status never travel as event payloads. Their setters publish
// retained documents on the bus and the change event is pushed bare;
// observers read the retained document for the current value.
//
// A notifying push requires the attribute's change events to have been
// declared via SetChangeEvents; undeclared pushes fail with
// ErrChangeEventNotArmed. An error update pushes the error to observers
// and leaves the cached value, timestamp, and quality untouched.
//
// Timestamps default to the time of publication, qualities to valid.
// Encoded attributes carry a format tag and an opaque payload as two
// separate parts.
package device
