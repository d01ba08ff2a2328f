package bridge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/calderlabs/spectra-core/internal/device"
	"github.com/calderlabs/spectra-core/internal/element"
)

// Pool is the slice of the element pool the bridge needs.
type Pool interface {
	ControllerClassInfo(class string) (element.ClassInfo, error)
	CreateController(args element.CreateArgs) (*element.Controller, error)
}

// PropertyStore loads stored controller properties. Values arrive as raw
// string rows, one slice entry per stored row, and are coerced against
// the class schema.
type PropertyStore interface {
	DeviceProperties(ctx context.Context, dev string, names []string) (map[string][]string, error)
}

// Logger is the narrow logging interface the bridge needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config identifies the controller a device fronts.
type Config struct {
	// Name is the device name on the bus. Required.
	Name string

	// Alias is the controller short name. Required.
	Alias string

	// Type is the element type the controller manages (e.g. "Motor").
	Type string

	// Library and Class locate the controller implementation.
	Library string
	Class   string

	// ID is the controller id within the pool.
	ID int

	// RoleIDs are pseudo-element role assignments, if any.
	RoleIDs []int
}

// ControllerDevice fronts one live controller on the bus: it creates the
// controller on first initialisation, reattaches on later ones, and
// translates controller-internal notifications into attribute events.
//
// Thread Safety:
//   - InitDevice and Shutdown must not run concurrently with each other.
//   - OnElementEvent is safe from any goroutine.
type ControllerDevice struct {
	*device.Device

	cfg    Config
	pool   Pool
	store  PropertyStore
	logger Logger

	mu   sync.Mutex
	ctrl *element.Controller
}

// NewControllerDevice creates a controller device facade.
//
// Parameters:
//   - cfg: Controller identity
//   - dev: The underlying device facade, already connected to a bus
//   - pool: The element pool that owns controllers
//   - store: Stored controller properties
//   - logger: Diagnostics, may be nil
func NewControllerDevice(cfg Config, dev *device.Device, pool Pool, store PropertyStore, logger Logger) (*ControllerDevice, error) {
	if cfg.Name == "" || cfg.Alias == "" {
		return nil, errors.New("bridge: controller name and alias are required")
	}
	if cfg.Class == "" {
		return nil, errors.New("bridge: controller class is required")
	}
	if dev == nil || pool == nil || store == nil {
		return nil, errors.New("bridge: device, pool, and store are required")
	}
	if logger == nil {
		logger = noopLogger{}
	}

	cd := &ControllerDevice{
		cfg:    cfg,
		Device: dev,
		pool:   pool,
		store:  store,
		logger: logger,
	}
	dev.Declare(device.NewAttribute("elementlist", device.KindString))
	return cd, nil
}

// Controller returns the live controller, or nil before the first
// successful initialisation.
func (cd *ControllerDevice) Controller() *element.Controller {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.ctrl
}

// InitDevice brings the device up.
//
// The first call creates the controller in the pool and registers the
// bridge as its listener. Later calls re-initialise the existing
// controller in place, so controller identity, listeners, and child
// elements survive a device restart.
//
// Missing required properties leave the device in the Alarm state with a
// status naming them; the controller is not created and a later
// InitDevice retries from scratch.
func (cd *ControllerDevice) InitDevice(ctx context.Context) error {
	cd.SetChangeEvents([]string{"state", "status"}, []string{"elementlist"})

	cd.mu.Lock()
	ctrl := cd.ctrl
	cd.mu.Unlock()

	if ctrl != nil {
		ctrl.ReInit()
		return nil
	}

	info, err := cd.pool.ControllerClassInfo(cd.cfg.Class)
	if err != nil {
		cd.failInit("unknown controller class: " + cd.cfg.Class)
		return fmt.Errorf("bridge: %s: %w", cd.cfg.Alias, err)
	}

	props, missing, err := cd.resolveProperties(ctx, info)
	if err != nil {
		cd.failInit("property load failed: " + err.Error())
		return fmt.Errorf("bridge: %s: %w", cd.cfg.Alias, err)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		cd.failInit("controller has missing properties: " + strings.Join(missing, ", "))
		return nil
	}

	ctrl, err = cd.pool.CreateController(element.CreateArgs{
		Type:       cd.cfg.Type,
		Name:       cd.cfg.Alias,
		FullName:   cd.cfg.Name,
		Library:    cd.cfg.Library,
		Class:      cd.cfg.Class,
		ID:         cd.cfg.ID,
		RoleIDs:    cd.cfg.RoleIDs,
		Properties: props,
	})
	if err != nil {
		cd.failInit("controller creation failed: " + err.Error())
		return fmt.Errorf("bridge: %s: %w", cd.cfg.Alias, err)
	}
	ctrl.AddListener(cd)

	cd.mu.Lock()
	cd.ctrl = ctrl
	cd.mu.Unlock()

	cd.logger.Info("controller created",
		"device", cd.cfg.Name, "class", cd.cfg.Class, "id", cd.cfg.ID)

	// Mapping queries only: the SetAttribute pushes publish the values.
	state, _ := cd.CalculateState(ctrl.State(), false)
	if err := cd.SetAttribute("state", device.Update{Value: state, Priority: 1, Sync: true}); err != nil {
		return err
	}
	status, _ := cd.CalculateStatus(ctrl.Status(), false)
	return cd.SetAttribute("status", device.Update{Value: status, Priority: 1, Sync: true})
}

// failInit parks the device in the Alarm state with the given status.
// Publish failures here are logged, not returned, so the original
// failure reaches the caller.
func (cd *ControllerDevice) failInit(status string) {
	if err := cd.SetAttribute("state", device.Update{Value: device.StateAlarm, Priority: 1, Sync: true}); err != nil {
		cd.logger.Error("alarm state publish failed", "device", cd.cfg.Name, "error", err)
	}
	if err := cd.SetAttribute("status", device.Update{Value: status, Priority: 1, Sync: true}); err != nil {
		cd.logger.Error("alarm status publish failed", "device", cd.cfg.Name, "error", err)
	}
}

// Shutdown detaches the bridge from its controller. The controller stays
// alive in the pool for a later reattach.
func (cd *ControllerDevice) Shutdown() {
	cd.mu.Lock()
	ctrl := cd.ctrl
	cd.mu.Unlock()

	if ctrl != nil {
		ctrl.RemoveListener(cd)
	}
}

// OnElementEvent translates a controller-internal notification into an
// attribute event. Events for attributes the device does not declare are
// dropped: controllers emit more than any one device exposes, and a miss
// here is routine, not an error.
func (cd *ControllerDevice) OnElementEvent(src *element.Controller, evt element.EventType, value any) {
	if _, ok := cd.Attributes().Lookup(evt.Name); !ok {
		cd.logger.Debug("event for undeclared attribute dropped",
			"device", cd.cfg.Name, "attribute", evt.Name)
		return
	}

	update := device.Update{Value: value, Priority: evt.Priority, Sync: true}

	switch strings.ToLower(evt.Name) {
	case "state":
		s, ok := value.(element.State)
		if !ok {
			cd.logger.Error("state event with unexpected payload",
				"device", cd.cfg.Name, "type", fmt.Sprintf("%T", value))
			return
		}
		update.Value, _ = cd.CalculateState(s, false)
	case "status":
		status, ok := value.(string)
		if !ok {
			cd.logger.Error("status event with unexpected payload",
				"device", cd.cfg.Name, "type", fmt.Sprintf("%T", value))
			return
		}
		update.Value, _ = cd.CalculateStatus(status, false)
	}

	if err := cd.SetAttribute(evt.Name, update); err != nil {
		cd.logger.Error("event push failed",
			"device", cd.cfg.Name, "attribute", evt.Name, "error", err)
	}
}
