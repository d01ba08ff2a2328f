package device

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calderlabs/spectra-core/internal/element"
	"github.com/calderlabs/spectra-core/internal/workpool"
)

// busCall records one invocation on the fake bus.
type busCall struct {
	method  string
	device  string
	attr    string
	value   any
	format  string
	data    []byte
	ts      time.Time
	quality Quality
	err     error
	state   State
	status  string
}

// fakeBus records calls and optionally re-enters the device from within
// a push, mimicking an observer callback that pushes again.
type fakeBus struct {
	mu      sync.Mutex
	calls   []busCall
	failAll error
	onPush  func()
}

func (b *fakeBus) record(c busCall) error {
	b.mu.Lock()
	b.calls = append(b.calls, c)
	fail := b.failAll
	hook := b.onPush
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	return fail
}

func (b *fakeBus) PushChangeEvent(device, attr string) error {
	return b.record(busCall{method: "event", device: device, attr: attr})
}

func (b *fakeBus) PushChangeEventValue(device, attr string, value any, ts time.Time, quality Quality) error {
	return b.record(busCall{method: "value", device: device, attr: attr, value: value, ts: ts, quality: quality})
}

func (b *fakeBus) PushChangeEventEncoded(device, attr, format string, data []byte, ts time.Time, quality Quality) error {
	return b.record(busCall{method: "encoded", device: device, attr: attr, format: format, data: data, ts: ts, quality: quality})
}

func (b *fakeBus) PushChangeEventError(device, attr string, err error) error {
	return b.record(busCall{method: "error", device: device, attr: attr, err: err})
}

func (b *fakeBus) SetState(device string, state State) error {
	return b.record(busCall{method: "state", device: device, state: state})
}

func (b *fakeBus) SetStatus(device, status string) error {
	return b.record(busCall{method: "status", device: device, status: status})
}

func (b *fakeBus) recorded() []busCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]busCall, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *fakeBus) byMethod(method string) []busCall {
	var out []busCall
	for _, c := range b.recorded() {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

// strictBus counts pushes and flags any push method re-entered mid-call.
// A short stay inside each call widens the window so unserialised callers
// overlap reliably.
type strictBus struct {
	busy      int32
	reentered int32
	calls     int32
}

func (b *strictBus) record() error {
	if !atomic.CompareAndSwapInt32(&b.busy, 0, 1) {
		atomic.AddInt32(&b.reentered, 1)
		return nil
	}
	time.Sleep(50 * time.Microsecond)
	atomic.AddInt32(&b.calls, 1)
	atomic.StoreInt32(&b.busy, 0)
	return nil
}

func (b *strictBus) PushChangeEvent(string, string) error { return b.record() }
func (b *strictBus) PushChangeEventValue(string, string, any, time.Time, Quality) error {
	return b.record()
}
func (b *strictBus) PushChangeEventEncoded(string, string, string, []byte, time.Time, Quality) error {
	return b.record()
}
func (b *strictBus) PushChangeEventError(string, string, error) error { return b.record() }
func (b *strictBus) SetState(string, State) error                     { return b.record() }
func (b *strictBus) SetStatus(string, string) error                   { return b.record() }

func newTestDevice(t *testing.T, bus Bus) *Device {
	t.Helper()

	pool := workpool.New(workpool.Config{Workers: 1, QueueSize: 16})
	t.Cleanup(func() {
		ctx, cancel := testContext(t)
		defer cancel()
		if err := pool.Shutdown(ctx); err != nil {
			t.Errorf("pool shutdown: %v", err)
		}
	})

	d, err := New(Config{Name: "motor/mot01", Bus: bus, Pool: pool})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.Declare(NewAttribute("position", KindDouble))
	d.Declare(NewAttribute("image", KindEncoded))
	d.SetChangeEvents([]string{"state", "status", "position"}, []string{"image"})
	return d
}

func TestSetAttributePriorityZeroCachesOnly(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	err := d.SetAttribute("position", Update{Value: 1.5, Sync: true})
	if err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	if calls := bus.recorded(); len(calls) != 0 {
		t.Fatalf("priority 0 reached the bus: %+v", calls)
	}

	attr, err := d.Attributes().Get("position")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	value, _, quality := attr.Value()
	if value != 1.5 {
		t.Errorf("cached value = %v, want 1.5", value)
	}
	if quality != QualityValid {
		t.Errorf("cached quality = %v, want QualityValid", quality)
	}
}

func TestSetAttributeNotifies(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	ts := time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC)
	err := d.SetAttribute("position", Update{
		Value: 2.25, Timestamp: ts, Quality: QualityChanging, Priority: 1, Sync: true,
	})
	if err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	values := bus.byMethod("value")
	if len(values) != 1 {
		t.Fatalf("expected 1 value event, got %d", len(values))
	}
	c := values[0]
	if c.device != "motor/mot01" || c.attr != "position" {
		t.Errorf("event addressed to (%q, %q)", c.device, c.attr)
	}
	if c.value != 2.25 {
		t.Errorf("event value = %v, want 2.25", c.value)
	}
	if !c.ts.Equal(ts) {
		t.Errorf("event timestamp = %v, want %v", c.ts, ts)
	}
	if c.quality != QualityChanging {
		t.Errorf("event quality = %v, want QualityChanging", c.quality)
	}
}

func TestSetAttributeDefaultsTimestampAndQuality(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	before := time.Now()
	if err := d.SetAttribute("position", NewUpdate(3.0)); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}
	after := time.Now()

	values := bus.byMethod("value")
	if len(values) != 1 {
		t.Fatalf("expected 1 value event, got %d", len(values))
	}
	c := values[0]
	if c.ts.Before(before) || c.ts.After(after) {
		t.Errorf("default timestamp %v outside [%v, %v]", c.ts, before, after)
	}
	if c.quality != QualityValid {
		t.Errorf("default quality = %v, want QualityValid", c.quality)
	}
}

func TestSetAttributeUrgentLiftsCriteriaDuringPush(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	attr, err := d.Attributes().Get("position")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !attr.IsCheckChangeCriteria() {
		t.Fatal("position must start with criteria checked")
	}

	var checkedDuringPush bool
	bus.onPush = func() {
		checkedDuringPush = attr.IsCheckChangeCriteria()
	}

	if err := d.SetAttribute("position", Update{Value: 5.0, Priority: 2, Sync: true}); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	if checkedDuringPush {
		t.Error("criteria still checked during urgent push")
	}
	if !attr.IsCheckChangeCriteria() {
		t.Error("criteria not restored after urgent push")
	}
}

func TestSetAttributeUrgentRestoresCriteriaOnBusFailure(t *testing.T) {
	bus := &fakeBus{failAll: errors.New("broker gone")}
	d := newTestDevice(t, bus)

	err := d.SetAttribute("position", Update{Value: 5.0, Priority: 2, Sync: true})
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("SetAttribute() error = %v, want ErrPublish", err)
	}

	attr, getErr := d.Attributes().Get("position")
	if getErr != nil {
		t.Fatalf("Get() error = %v", getErr)
	}
	if !attr.IsCheckChangeCriteria() {
		t.Error("criteria not restored after failed urgent push")
	}
}

func TestSetAttributeErrorPushesErrorOnly(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	// Seed a good value, then deliver an error update.
	seedTS := time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC)
	if err := d.SetAttribute("position", Update{
		Value: 12.5, Timestamp: seedTS, Sync: true,
	}); err != nil {
		t.Fatalf("seed SetAttribute() error = %v", err)
	}

	hwErr := errors.New("motor stalled")
	err := d.SetAttribute("position", Update{Err: hwErr, Priority: 1, Sync: true})
	if err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	calls := bus.recorded()
	if len(calls) != 1 || calls[0].method != "error" {
		t.Fatalf("expected a single error event, got %+v", calls)
	}
	if !errors.Is(calls[0].err, hwErr) {
		t.Errorf("event error = %v, want motor stalled", calls[0].err)
	}

	// The cache keeps the last good value; errors only travel.
	attr, getErr := d.Attributes().Get("position")
	if getErr != nil {
		t.Fatalf("Get() error = %v", getErr)
	}
	value, ts, quality := attr.Value()
	if value != 12.5 {
		t.Errorf("cached value = %v, want 12.5 untouched", value)
	}
	if !ts.Equal(seedTS) {
		t.Errorf("cached timestamp = %v, want %v untouched", ts, seedTS)
	}
	if quality != QualityValid {
		t.Errorf("cached quality = %v, want QualityValid untouched", quality)
	}
}

func TestSetAttributeStatePushesBareEvent(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	err := d.SetAttribute("state", Update{Value: StateMoving, Priority: 1, Sync: true})
	if err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	states := bus.byMethod("state")
	if len(states) != 1 || states[0].state != StateMoving {
		t.Fatalf("retained state document = %+v, want StateMoving", states)
	}

	events := bus.byMethod("event")
	if len(events) != 1 || events[0].attr != "state" {
		t.Fatalf("expected a bare state event, got %+v", events)
	}

	// No value payload may travel with the state event.
	if values := bus.byMethod("value"); len(values) != 0 {
		t.Errorf("state event carried a value payload: %+v", values)
	}

	if d.State() != StateMoving {
		t.Errorf("cached state = %v, want StateMoving", d.State())
	}
}

func TestSetAttributeStatusPushesBareEvent(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	err := d.SetAttribute("status", Update{Value: "moving to 10.0", Priority: 1, Sync: true})
	if err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	statuses := bus.byMethod("status")
	if len(statuses) != 1 || statuses[0].status != "moving to 10.0" {
		t.Fatalf("retained status document = %+v", statuses)
	}
	events := bus.byMethod("event")
	if len(events) != 1 || events[0].attr != "status" {
		t.Fatalf("expected a bare status event, got %+v", events)
	}
	if values := bus.byMethod("value"); len(values) != 0 {
		t.Errorf("status event carried a value payload: %+v", values)
	}
	if d.Status() != "moving to 10.0" {
		t.Errorf("cached status = %q", d.Status())
	}
}

func TestSetAttributeEncodedUnpacksFormatAndPayload(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	enc := Encoded{Format: "video/raw", Data: []byte{0x01, 0x02, 0x03}}
	err := d.SetAttribute("image", Update{Value: enc, Priority: 1, Sync: true})
	if err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	encs := bus.byMethod("encoded")
	if len(encs) != 1 {
		t.Fatalf("expected 1 encoded event, got %d", len(encs))
	}
	c := encs[0]
	if c.format != "video/raw" {
		t.Errorf("format part = %q, want video/raw", c.format)
	}
	if string(c.data) != string(enc.Data) {
		t.Errorf("payload part = %v, want %v", c.data, enc.Data)
	}
}

func TestSetAttributeUnknownName(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	err := d.SetAttribute("velocity", NewUpdate(1.0))
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("SetAttribute() error = %v, want ErrUnknownAttribute", err)
	}
}

func TestSetAttributeUnarmedFailsNotifyingPush(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	// Declared but never passed to SetChangeEvents.
	d.Declare(NewAttribute("velocity", KindDouble))

	err := d.SetAttribute("velocity", NewUpdate(1.0))
	if !errors.Is(err, ErrChangeEventNotArmed) {
		t.Fatalf("SetAttribute() error = %v, want ErrChangeEventNotArmed", err)
	}
	if calls := bus.recorded(); len(calls) != 0 {
		t.Fatalf("unarmed push reached the bus: %+v", calls)
	}

	// Cache-only updates do not notify, so they need no declaration.
	if err := d.SetAttribute("velocity", Update{Value: 2.0, Sync: true}); err != nil {
		t.Fatalf("cache-only SetAttribute() error = %v", err)
	}
	attr, getErr := d.Attributes().Get("velocity")
	if getErr != nil {
		t.Fatalf("Get() error = %v", getErr)
	}
	if value, _, _ := attr.Value(); value != 2.0 {
		t.Errorf("cached value = %v, want 2.0", value)
	}
}

func TestPushIsReentrant(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	// An observer callback that pushes the status attribute while the
	// position push still holds the lock must not deadlock. The hook runs
	// on the pushing goroutine, so a plain flag guards the nested push
	// against firing again from its own bus calls.
	var nested bool
	bus.onPush = func() {
		if nested {
			return
		}
		nested = true
		if err := d.SetAttribute("status", Update{
			Value: "reacting", Priority: 1, Sync: true,
		}); err != nil {
			t.Errorf("nested SetAttribute() error = %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.SetAttribute("position", NewUpdate(7.0)); err != nil {
			t.Errorf("SetAttribute() error = %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reentrant push deadlocked")
	}

	if statuses := bus.byMethod("status"); len(statuses) != 1 {
		t.Errorf("nested push did not reach the bus: %d status docs", len(statuses))
	}
}

func TestConcurrentSyncPushesAreSerialised(t *testing.T) {
	bus := &strictBus{}
	d := newTestDevice(t, bus)

	const (
		pushers = 8
		pushes  = 25
	)

	var wg sync.WaitGroup
	for g := 0; g < pushers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < pushes; i++ {
				err := d.SetAttribute("position", Update{
					Value: float64(g*pushes + i), Priority: 1, Sync: true,
				})
				if err != nil {
					t.Errorf("SetAttribute() error = %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&bus.reentered); n != 0 {
		t.Errorf("bus push re-entered mid-call %d times", n)
	}
	if n := atomic.LoadInt32(&bus.calls); n != pushers*pushes {
		t.Errorf("bus observed %d pushes, want %d", n, pushers*pushes)
	}
}

func TestSetAttributeAsyncRunsOnPool(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	pushed := make(chan struct{})
	bus.onPush = func() {
		select {
		case <-pushed:
		default:
			close(pushed)
		}
	}

	if err := d.SetAttribute("position", Update{Value: 9.0, Priority: 1}); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("async update never reached the bus")
	}
}

func TestSetAttributeAsyncQueueFullDrops(t *testing.T) {
	bus := &fakeBus{}

	pool := workpool.New(workpool.Config{Workers: 1, QueueSize: 1})
	t.Cleanup(func() {
		ctx, cancel := testContext(t)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})

	d, err := New(Config{Name: "motor/mot01", Bus: bus, Pool: pool})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.Declare(NewAttribute("position", KindDouble))
	d.SetChangeEvents([]string{"position"}, nil)

	// Wedge the single worker, then fill the one queue slot.
	block := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Submit("block", func() {
		close(started)
		<-block
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	<-started
	if err := pool.Submit("fill", func() {}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	err = d.SetAttribute("position", Update{Value: 1.0, Priority: 1})
	if !errors.Is(err, workpool.ErrQueueFull) {
		t.Errorf("SetAttribute() error = %v, want ErrQueueFull", err)
	}
	close(block)
}

func TestRelaxCriteria(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	attr, err := d.Attributes().Get("position")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	guard, err := d.RelaxCriteria("position")
	if err != nil {
		t.Fatalf("RelaxCriteria() error = %v", err)
	}
	if attr.IsCheckChangeCriteria() {
		t.Error("criteria still checked after RelaxCriteria")
	}
	guard.Release()
	if !attr.IsCheckChangeCriteria() {
		t.Error("criteria not restored")
	}

	// Releasing twice is harmless.
	guard.Release()
	if !attr.IsCheckChangeCriteria() {
		t.Error("second Release disturbed the criteria")
	}

	// Unchecked attribute: the guard is a no-op, not an error.
	guard, err = d.RelaxCriteria("image")
	if err != nil {
		t.Fatalf("RelaxCriteria(image) error = %v", err)
	}
	guard.Release()

	// Disarmed attribute.
	d.Declare(NewAttribute("limit", KindBoolean))
	if _, err := d.RelaxCriteria("limit"); !errors.Is(err, ErrChangeEventNotArmed) {
		t.Errorf("RelaxCriteria(limit) error = %v, want ErrChangeEventNotArmed", err)
	}
}

func TestCalculateState(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	tests := []struct {
		in   element.State
		want State
	}{
		{element.StateOn, StateOn},
		{element.StateMoving, StateMoving},
		{element.StateRunning, StateMoving},
		{element.StateFault, StateFault},
		{element.State(99), StateUnknown},
	}
	for _, tt := range tests {
		got, err := d.CalculateState(tt.in, false)
		if err != nil {
			t.Fatalf("CalculateState(%v) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("CalculateState(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCalculateStateQueryLeavesCacheUntouched(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	if err := d.SetAttribute("state", Update{Value: StateOn, Priority: 1, Sync: true}); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}

	if got, err := d.CalculateState(element.State(99), false); err != nil || got != StateUnknown {
		t.Fatalf("CalculateState() = (%v, %v), want (StateUnknown, nil)", got, err)
	}

	if d.State() != StateOn {
		t.Errorf("mapping query changed cached state to %v, want StateOn", d.State())
	}
}

func TestCalculateStateUpdateApplies(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	got, err := d.CalculateState(element.StateMoving, true)
	if err != nil {
		t.Fatalf("CalculateState() error = %v", err)
	}
	if got != StateMoving {
		t.Errorf("CalculateState() = %v, want StateMoving", got)
	}
	if d.State() != StateMoving {
		t.Errorf("cached state = %v, want StateMoving", d.State())
	}

	states := bus.byMethod("state")
	if len(states) != 1 || states[0].state != StateMoving {
		t.Errorf("retained state document = %+v, want StateMoving", states)
	}
}

func TestCalculateStatus(t *testing.T) {
	bus := &fakeBus{}
	d := newTestDevice(t, bus)

	if got, err := d.CalculateStatus("homing", false); err != nil || got != "homing" {
		t.Errorf("CalculateStatus() = (%q, %v), want passthrough", got, err)
	}

	if _, err := d.CalculateState(element.StateMoving, true); err != nil {
		t.Fatalf("CalculateState() error = %v", err)
	}
	got, err := d.CalculateStatus("", true)
	if err != nil {
		t.Fatalf("CalculateStatus() error = %v", err)
	}
	if got != "the device is in MOVING state" {
		t.Errorf("CalculateStatus(\"\") = %q", got)
	}
	if d.Status() != "the device is in MOVING state" {
		t.Errorf("cached status = %q", d.Status())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Bus: &fakeBus{}}); err == nil {
		t.Error("New() without name succeeded")
	}
	if _, err := New(Config{Name: "motor/mot01"}); err == nil {
		t.Error("New() without bus succeeded")
	}
}
