package device

import (
	"sync"
	"time"
)

// Attribute is one declared attribute of a device: its wire kind, its
// change-event configuration, and the last cached value.
//
// Two flags govern event publication:
//   - armed: the attribute pushes change events at all
//   - checked: pushed events pass through duplicate suppression
//     (the change criteria) before reaching observers
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Attribute struct {
	name string
	kind DataKind

	mu      sync.RWMutex
	armed   bool
	checked bool

	value   any
	encoded Encoded
	ts      time.Time
	quality Quality
}

// NewAttribute creates an attribute of the given kind. Change events
// start disarmed; the device arms them during initialisation.
func NewAttribute(name string, kind DataKind) *Attribute {
	return &Attribute{name: name, kind: kind}
}

// Name returns the attribute name as declared.
func (a *Attribute) Name() string { return a.name }

// Kind returns the attribute wire kind.
func (a *Attribute) Kind() DataKind { return a.kind }

// SetChangeEvent configures event publication.
//
// Parameters:
//   - armed: Whether the attribute pushes change events
//   - checked: Whether pushed events pass the change criteria
func (a *Attribute) SetChangeEvent(armed, checked bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.armed = armed
	a.checked = checked
}

// IsChangeEventArmed reports whether the attribute pushes change events.
func (a *Attribute) IsChangeEventArmed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.armed
}

// IsCheckChangeCriteria reports whether pushed events pass duplicate
// suppression.
func (a *Attribute) IsCheckChangeCriteria() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.checked
}

// SetValue caches a value with its timestamp and quality.
//
// Error conditions are never cached: an error update travels to
// observers only and leaves the last good value in place.
func (a *Attribute) SetValue(value any, ts time.Time, quality Quality) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = value
	a.encoded = Encoded{}
	a.ts = ts
	a.quality = quality
}

// SetEncoded caches an encoded payload with its timestamp and quality.
func (a *Attribute) SetEncoded(enc Encoded, ts time.Time, quality Quality) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = nil
	a.encoded = enc
	a.ts = ts
	a.quality = quality
}

// Value returns the cached value, its timestamp, and quality.
func (a *Attribute) Value() (any, time.Time, Quality) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value, a.ts, a.quality
}

// EncodedValue returns the cached encoded payload, its timestamp, and
// quality.
func (a *Attribute) EncodedValue() (Encoded, time.Time, Quality) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.encoded, a.ts, a.quality
}
