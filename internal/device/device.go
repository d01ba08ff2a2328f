package device

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/calderlabs/spectra-core/internal/element"
	"github.com/calderlabs/spectra-core/internal/workpool"
)

// Logger is the narrow logging interface the device needs. Satisfied by
// *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Update describes one attribute update.
//
// The zero value of each field has a meaning:
//   - Timestamp zero: stamped with the current time at publication
//   - Quality zero: QualityValid
//   - Priority zero: cache only, no notification
//   - Sync false: the update runs on the shared worker pool
type Update struct {
	// Value is the new attribute value. For encoded attributes it must
	// be an Encoded. Ignored when Err is set.
	Value any

	// Timestamp is the acquisition time of the value.
	Timestamp time.Time

	// Quality annotates the value.
	Quality Quality

	// Err marks the update as an error condition. The error is pushed to
	// observers instead of a value; the cached value is left untouched.
	Err error

	// Priority selects the notification behaviour: 0 caches without
	// notifying, 1 notifies normally, above 1 the attribute's duplicate
	// suppression is lifted for the delivery.
	Priority int

	// Sync runs the update on the calling goroutine instead of the
	// worker pool.
	Sync bool
}

// NewUpdate returns a synchronous, normal-priority update for value.
func NewUpdate(value any) Update {
	return Update{Value: value, Priority: 1, Sync: true}
}

// Config carries the dependencies of a Device.
type Config struct {
	// Name is the device name on the bus. Required.
	Name string

	// Bus is the notification transport. Required.
	Bus Bus

	// Pool runs asynchronous updates. Defaults to the shared pool.
	Pool *workpool.Pool

	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger Logger
}

// Device is the synchronisation facade between an in-process element and
// its observers on the bus: it caches state, status, and attribute
// values, and publishes rate-controlled, quality-annotated change events.
//
// All bus-facing pushes of one device are serialised through a reentrant
// lock, so an event observer that triggers another push from its
// callback does not deadlock.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Device struct {
	name   string
	bus    Bus
	pool   *workpool.Pool
	logger Logger

	attrs    *Table
	pushLock ReentrantLock

	stateMu sync.RWMutex
	state   State
	status  string
}

// New creates a device facade.
//
// Returns:
//   - *Device: The facade with state and status attributes declared
//   - error: If the configuration is incomplete
func New(cfg Config) (*Device, error) {
	if cfg.Name == "" {
		return nil, errors.New("device: name is required")
	}
	if cfg.Bus == nil {
		return nil, errors.New("device: bus is required")
	}
	pool := cfg.Pool
	if pool == nil {
		pool = workpool.Shared()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	d := &Device{
		name:   cfg.Name,
		bus:    cfg.Bus,
		pool:   pool,
		logger: logger,
		attrs:  NewTable(),
		state:  StateInit,
		status: "the device is initialising",
	}
	d.attrs.Declare(NewAttribute("state", KindString))
	d.attrs.Declare(NewAttribute("status", KindString))
	return d, nil
}

// Name returns the device name on the bus.
func (d *Device) Name() string { return d.name }

// Attributes returns the device attribute table.
func (d *Device) Attributes() *Table { return d.attrs }

// Declare adds an attribute to the device.
func (d *Device) Declare(attr *Attribute) {
	d.attrs.Declare(attr)
}

// SetChangeEvents arms change events on the named attributes.
//
// Parameters:
//   - checked: Attributes whose events pass duplicate suppression
//   - unchecked: Attributes whose events always reach observers
//
// Unknown names are skipped with a warning so partial declaration during
// startup does not abort initialisation.
func (d *Device) SetChangeEvents(checked, unchecked []string) {
	for _, name := range checked {
		attr, ok := d.attrs.Lookup(name)
		if !ok {
			d.logger.Warn("cannot arm change event", "device", d.name, "attribute", name)
			continue
		}
		attr.SetChangeEvent(true, true)
	}
	for _, name := range unchecked {
		attr, ok := d.attrs.Lookup(name)
		if !ok {
			d.logger.Warn("cannot arm change event", "device", d.name, "attribute", name)
			continue
		}
		attr.SetChangeEvent(true, false)
	}
}

// State returns the cached device state.
func (d *Device) State() State {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.state
}

// Status returns the cached device status text.
func (d *Device) Status() string {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.status
}

// SetState caches the device state and publishes the retained state
// document. It does not fire a change event; use SetAttribute with the
// state attribute for that.
func (d *Device) SetState(s State) error {
	d.stateMu.Lock()
	d.state = s
	d.stateMu.Unlock()

	if err := d.bus.SetState(d.name, s); err != nil {
		return fmt.Errorf("%w: state: %v", ErrPublish, err)
	}
	return nil
}

// SetStatus caches the device status text and publishes the retained
// status document. It does not fire a change event.
func (d *Device) SetStatus(status string) error {
	d.stateMu.Lock()
	d.status = status
	d.stateMu.Unlock()

	if err := d.bus.SetStatus(d.name, status); err != nil {
		return fmt.Errorf("%w: status: %v", ErrPublish, err)
	}
	return nil
}

// CalculateState maps a controller-domain state into the device state
// vocabulary.
//
// Parameters:
//   - s: The controller-domain state
//   - update: Apply the mapped state to the device. The cache and the
//     retained state document change under the push lock
//
// With update false this is a pure query; the cached state is untouched
// and the error is always nil.
func (d *Device) CalculateState(s element.State, update bool) (State, error) {
	mapped := FromElementState(s)
	if update {
		d.pushLock.Lock()
		defer d.pushLock.Unlock()
		if err := d.SetState(mapped); err != nil {
			return mapped, err
		}
	}
	return mapped, nil
}

// CalculateStatus returns status if non-empty, otherwise a default text
// derived from the cached state. With update true the resulting text is
// applied to the device under the push lock.
func (d *Device) CalculateStatus(status string, update bool) (string, error) {
	if status == "" {
		status = "the device is in " + d.State().String() + " state"
	}
	if update {
		d.pushLock.Lock()
		defer d.pushLock.Unlock()
		if err := d.SetStatus(status); err != nil {
			return status, err
		}
	}
	return status, nil
}

// SetAttribute applies an attribute update.
//
// Synchronous updates run on the calling goroutine and report their
// error directly. Asynchronous updates are handed to the worker pool; a
// full queue drops the update with a warning and returns ErrQueueFull,
// it never blocks or aborts the caller.
func (d *Device) SetAttribute(name string, u Update) error {
	if u.Sync {
		return d.setAttributePush(name, u)
	}

	err := d.pool.Submit("push "+d.name+"/"+name, func() {
		if pushErr := d.setAttributePush(name, u); pushErr != nil {
			d.logger.Error("attribute push failed",
				"device", d.name, "attribute", name, "error", pushErr)
		}
	})
	if err != nil {
		d.logger.Warn("attribute update dropped",
			"device", d.name, "attribute", name, "error", err)
		return err
	}
	return nil
}

// setAttributePush serialises notifying updates through the device push
// lock. Cache-only updates bypass it.
func (d *Device) setAttributePush(name string, u Update) error {
	if u.Priority > 0 {
		d.pushLock.Lock()
		defer d.pushLock.Unlock()
	}
	return d.push(name, u)
}

// push is the publication algorithm. Callers with Priority > 0 hold the
// push lock.
func (d *Device) push(name string, u Update) error {
	attr, err := d.attrs.Get(name)
	if err != nil {
		return err
	}

	fire := u.Priority > 0

	// Change events must be declared before the first notifying push.
	if fire && !attr.IsChangeEventArmed() {
		return fmt.Errorf("%w: %s", ErrChangeEventNotArmed, name)
	}

	// Urgent updates must reach observers even when the value repeats.
	// Duplicate suppression is lifted for the push and restored
	// unconditionally afterwards.
	if u.Priority > 1 {
		defer relax(attr).Release()
	}

	// An error condition travels to observers only; the cached value,
	// timestamp, and quality stay as they were.
	if u.Err != nil {
		if fire {
			if pushErr := d.bus.PushChangeEventError(d.name, attr.Name(), u.Err); pushErr != nil {
				return fmt.Errorf("%w: %s: %v", ErrPublish, attr.Name(), pushErr)
			}
		}
		return nil
	}

	ts := u.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	switch strings.ToLower(name) {
	case "state":
		s, ok := u.Value.(State)
		if !ok {
			return fmt.Errorf("device: state update value is %T, want State", u.Value)
		}
		if err := d.SetState(s); err != nil {
			return err
		}
		if fire {
			// State events carry no value payload: observers read the
			// retained state document. Attaching the value here leaks
			// the cached copy on some clients.
			if pushErr := d.bus.PushChangeEvent(d.name, attr.Name()); pushErr != nil {
				return fmt.Errorf("%w: state: %v", ErrPublish, pushErr)
			}
		}
		return nil

	case "status":
		status, ok := u.Value.(string)
		if !ok {
			return fmt.Errorf("device: status update value is %T, want string", u.Value)
		}
		if err := d.SetStatus(status); err != nil {
			return err
		}
		if fire {
			if pushErr := d.bus.PushChangeEvent(d.name, attr.Name()); pushErr != nil {
				return fmt.Errorf("%w: status: %v", ErrPublish, pushErr)
			}
		}
		return nil
	}

	if attr.Kind() == KindEncoded {
		enc, ok := u.Value.(Encoded)
		if !ok {
			return fmt.Errorf("device: encoded update value is %T, want Encoded", u.Value)
		}
		attr.SetEncoded(enc, ts, u.Quality)
		if fire {
			if pushErr := d.bus.PushChangeEventEncoded(
				d.name, attr.Name(), enc.Format, enc.Data, ts, u.Quality); pushErr != nil {
				return fmt.Errorf("%w: %s: %v", ErrPublish, attr.Name(), pushErr)
			}
		}
		return nil
	}

	attr.SetValue(u.Value, ts, u.Quality)
	if fire {
		if pushErr := d.bus.PushChangeEventValue(
			d.name, attr.Name(), u.Value, ts, u.Quality); pushErr != nil {
			return fmt.Errorf("%w: %s: %v", ErrPublish, attr.Name(), pushErr)
		}
	}
	return nil
}

// CriteriaGuard restores duplicate suppression that was lifted for an
// urgent push. Release is idempotent and must run on every exit path,
// so call it with defer.
type CriteriaGuard struct {
	attr   *Attribute
	lifted bool
}

// Release re-enables duplicate suppression. A no-op when the attribute
// was not checked to begin with, or when already released.
func (g *CriteriaGuard) Release() {
	if g.lifted {
		g.attr.SetChangeEvent(true, true)
		g.lifted = false
	}
}

// relax lifts duplicate suppression on an armed attribute.
func relax(attr *Attribute) *CriteriaGuard {
	if !attr.IsCheckChangeCriteria() {
		return &CriteriaGuard{}
	}
	attr.SetChangeEvent(true, false)
	return &CriteriaGuard{attr: attr, lifted: true}
}

// RelaxCriteria lifts duplicate suppression on the named attribute and
// returns the guard that restores it.
//
// Returns:
//   - *CriteriaGuard: Restores duplicate suppression on Release
//   - error: ErrUnknownAttribute or ErrChangeEventNotArmed
func (d *Device) RelaxCriteria(name string) (*CriteriaGuard, error) {
	attr, err := d.attrs.Get(name)
	if err != nil {
		return nil, err
	}
	if !attr.IsChangeEventArmed() {
		return nil, fmt.Errorf("%w: %s", ErrChangeEventNotArmed, name)
	}
	return relax(attr), nil
}
