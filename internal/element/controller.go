package element

import (
	"fmt"
	"sort"
	"sync"
)

// Element is one child of a controller (an axis, a counter channel).
// Elements are identified within their controller by an integer id.
type Element struct {
	mu    sync.RWMutex
	id    int
	name  string
	state State
}

// ID returns the element id.
func (e *Element) ID() int { return e.id }

// Name returns the element name.
func (e *Element) Name() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

// State returns the element state.
func (e *Element) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// SetState updates the element state.
func (e *Element) SetState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// Controller models one live hardware controller: a set of child elements,
// an online/error condition, and a list of listeners notified on internal
// state changes.
//
// A Controller is created by the Pool on first device initialization and
// re-initialized (never recreated) on subsequent inits - listener
// registrations and child elements survive a device restart.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Listener callbacks run outside the controller lock, on the
//     goroutine that triggered the change.
type Controller struct {
	// Immutable identity, set at creation.
	id       int
	name     string
	fullName string
	ctrlType string
	library  string
	class    string
	roleIDs  []int

	mu         sync.RWMutex
	properties map[string]any
	elements   map[int]*Element
	listeners  []Listener
	online     bool
	errStr     string
	state      State
	status     string
}

// ID returns the controller id within the pool.
func (c *Controller) ID() int { return c.id }

// Name returns the controller short name.
func (c *Controller) Name() string { return c.name }

// FullName returns the controller device name on the bus.
func (c *Controller) FullName() string { return c.fullName }

// Type returns the element type this controller manages (e.g. "Motor").
func (c *Controller) Type() string { return c.ctrlType }

// Library returns the controller library identifier.
func (c *Controller) Library() string { return c.library }

// Class returns the controller class name.
func (c *Controller) Class() string { return c.class }

// RoleIDs returns the pseudo-element role ids, if any.
func (c *Controller) RoleIDs() []int {
	ids := make([]int, len(c.roleIDs))
	copy(ids, c.roleIDs)
	return ids
}

// Properties returns a copy of the resolved controller properties.
func (c *Controller) Properties() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	props := make(map[string]any, len(c.properties))
	for k, v := range c.properties {
		props[k] = v
	}
	return props
}

// State returns the controller-domain state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState updates the controller state and notifies listeners.
func (c *Controller) SetState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.Notify(StateEvent, s)
}

// Status returns the controller status text.
func (c *Controller) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SetStatus updates the controller status text and notifies listeners.
func (c *Controller) SetStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	c.Notify(StatusEvent, status)
}

// IsOnline reports whether the controller is reachable.
func (c *Controller) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// SetOnline updates the online flag.
func (c *Controller) SetOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.online = online
}

// ErrorString returns the last controller error description.
func (c *Controller) ErrorString() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errStr
}

// SetError records a controller error description.
func (c *Controller) SetError(errStr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errStr = errStr
}

// AddListener registers a listener for controller-internal changes.
func (c *Controller) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters a previously added listener.
func (c *Controller) RemoveListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.listeners {
		if existing == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Notify fans an event out to all registered listeners.
//
// The listener list is snapshotted first so callbacks run outside the
// controller lock and may safely call back into the controller.
func (c *Controller) Notify(evt EventType, value any) {
	c.mu.RLock()
	snapshot := make([]Listener, len(c.listeners))
	copy(snapshot, c.listeners)
	c.mu.RUnlock()

	for _, l := range snapshot {
		l.OnElementEvent(c, evt, value)
	}
}

// AddElement creates a child element with the given id and name.
// Returns ErrElementExists if the id is already taken.
func (c *Controller) AddElement(id int, name string) (*Element, error) {
	c.mu.Lock()
	if _, ok := c.elements[id]; ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: id %d", ErrElementExists, id)
	}
	e := &Element{id: id, name: name, state: StateOn}
	c.elements[id] = e
	c.mu.Unlock()

	c.Notify(ElementListEvent, c.ElementNames())
	return e, nil
}

// RemoveElement deletes a child element by id.
// Returns ErrElementNotFound if the id is unknown.
func (c *Controller) RemoveElement(id int) error {
	c.mu.Lock()
	if _, ok := c.elements[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrElementNotFound, id)
	}
	delete(c.elements, id)
	c.mu.Unlock()

	c.Notify(ElementListEvent, c.ElementNames())
	return nil
}

// Element returns the child element with the given id.
func (c *Controller) Element(id int) (*Element, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.elements[id]
	return e, ok
}

// Elements returns all child elements sorted by id.
func (c *Controller) Elements() []*Element {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]int, 0, len(c.elements))
	for id := range c.elements {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	elems := make([]*Element, 0, len(ids))
	for _, id := range ids {
		elems = append(elems, c.elements[id])
	}
	return elems
}

// ElementNames returns the names of all child elements sorted by id.
func (c *Controller) ElementNames() []string {
	elems := c.Elements()
	names := make([]string, 0, len(elems))
	for _, e := range elems {
		names = append(names, e.Name())
	}
	return names
}

// ReInit re-initializes a live controller in place.
//
// Identity, listener registrations, and child elements are preserved -
// this is what allows a device restart to reattach to running hardware
// without duplicating the controller. Listeners observe an Init/On state
// cycle.
func (c *Controller) ReInit() {
	c.mu.Lock()
	c.online = true
	c.errStr = ""
	c.mu.Unlock()

	c.SetState(StateInit)
	c.SetStatus("controller re-initialised")
	c.SetState(StateOn)
}
