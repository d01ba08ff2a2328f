// Package element models the hardware side of the control system: live
// controllers, their child elements (axes, counter channels), and the
// notification fan-out that drives device attribute events.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                          Pool                             │
//	│  • controller class schemas (ClassInfo / PropertyInfo)    │
//	│  • live controllers, one per full name                    │
//	└───────────────┬──────────────────────────────────────────┘
//	                │ CreateController (first init only)
//	                ▼
//	┌──────────────────────────────────────────────────────────┐
//	│                       Controller                          │
//	│  • child Elements by integer id                           │
//	│  • online flag, error string, state, status               │
//	│  • Listener fan-out (Notify)        ──▶ device bridge     │
//	│  • ReInit: same identity across device restarts           │
//	└──────────────────────────────────────────────────────────┘
//
// # Lifecycle invariant
//
// A controller is created lazily by the pool on the first device
// initialization and re-initialized in place on every later one. There is
// never more than one live Controller per controller device; ReInit
// preserves identity, listeners, and child elements.
package element
