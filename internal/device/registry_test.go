package device

import (
	"testing"

	"github.com/calderlabs/spectra-core/internal/workpool"
)

func newRegistryDevice(t *testing.T, name string) *Device {
	t.Helper()

	pool := workpool.New(workpool.Config{Workers: 1, QueueSize: 4})
	t.Cleanup(func() {
		ctx, cancel := testContext(t)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})

	d, err := New(Config{Name: name, Bus: &fakeBus{}, Pool: pool})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func TestRegistryAddGet(t *testing.T) {
	reg := NewRegistry()
	d := newRegistryDevice(t, "motor/mot01")
	reg.Add(d)

	got, err := reg.Get("Motor/MOT01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != d {
		t.Error("Get() returned a different device")
	}

	if _, err := reg.Get("motor/ghost"); err == nil {
		t.Error("Get() on unknown name succeeded")
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	reg.Add(newRegistryDevice(t, "motor/mot01"))

	reg.Remove("MOTOR/MOT01")
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after remove, want 0", reg.Len())
	}

	// Removing again is a no-op.
	reg.Remove("motor/mot01")
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"motor/b", "motor/a", "counter/c"} {
		reg.Add(newRegistryDevice(t, name))
	}

	devices := reg.List()
	want := []string{"counter/c", "motor/a", "motor/b"}
	if len(devices) != len(want) {
		t.Fatalf("List() returned %d devices, want %d", len(devices), len(want))
	}
	for i, d := range devices {
		if d.Name() != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, d.Name(), want[i])
		}
	}
}
