package element

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PropertyKind is the declared data type of a controller property.
type PropertyKind int

// Property kinds.
const (
	PropString PropertyKind = iota
	PropInteger
	PropDouble
	PropBoolean
)

// PropertyFormat distinguishes scalar properties from arrays.
type PropertyFormat int

// Property formats.
const (
	FormatScalar PropertyFormat = iota
	FormatArray
)

// PropertyInfo describes one property of a controller class.
type PropertyInfo struct {
	Name        string
	Description string
	Kind        PropertyKind
	Format      PropertyFormat

	// Default is the value used when the property store has none.
	// nil means the property is required.
	Default any
}

// ClassInfo is the schema of a controller class: which properties it
// declares and how their raw stored values must be interpreted.
type ClassInfo struct {
	Name       string
	Properties map[string]PropertyInfo
}

// CreateArgs carries the full configuration for controller creation.
type CreateArgs struct {
	Type       string
	Name       string
	FullName   string
	Library    string
	Class      string
	ID         int
	RoleIDs    []int
	Properties map[string]any
}

// Pool owns the live controllers of the process and the registry of
// controller class schemas.
//
// Invariant: at most one live Controller per full name. Creation of a
// second controller under the same full name fails; device
// re-initialization must go through Controller.ReInit instead.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Pool struct {
	mu          sync.RWMutex
	classes     map[string]ClassInfo
	controllers map[string]*Controller
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		classes:     make(map[string]ClassInfo),
		controllers: make(map[string]*Controller),
	}
}

// RegisterClass adds (or replaces) a controller class schema.
func (p *Pool) RegisterClass(info ClassInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes[strings.ToLower(info.Name)] = info
}

// ControllerClassInfo returns the schema for a controller class.
// Returns ErrUnknownClass if the class was never registered.
func (p *Pool) ControllerClassInfo(class string) (ClassInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info, ok := p.classes[strings.ToLower(class)]
	if !ok {
		return ClassInfo{}, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	return info, nil
}

// CreateController creates and registers a new live controller.
//
// Parameters:
//   - args: Full controller configuration including resolved properties
//
// Returns:
//   - *Controller: The new controller, online and in the On state
//   - error: ErrControllerExists if a controller already lives under
//     args.FullName, ErrUnknownClass if args.Class was never registered
func (p *Pool) CreateController(args CreateArgs) (*Controller, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(args.FullName)
	if _, ok := p.controllers[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrControllerExists, args.FullName)
	}
	if _, ok := p.classes[strings.ToLower(args.Class)]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, args.Class)
	}

	props := make(map[string]any, len(args.Properties))
	for k, v := range args.Properties {
		props[k] = v
	}

	ctrl := &Controller{
		id:         args.ID,
		name:       args.Name,
		fullName:   args.FullName,
		ctrlType:   args.Type,
		library:    args.Library,
		class:      args.Class,
		roleIDs:    append([]int(nil), args.RoleIDs...),
		properties: props,
		elements:   make(map[int]*Element),
		online:     true,
		state:      StateOn,
		status:     "controller is online",
	}
	p.controllers[key] = ctrl

	return ctrl, nil
}

// Controller returns the live controller registered under fullName.
func (p *Pool) Controller(fullName string) (*Controller, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ctrl, ok := p.controllers[strings.ToLower(fullName)]
	return ctrl, ok
}

// Controllers returns all live controllers sorted by full name.
func (p *Pool) Controllers() []*Controller {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.controllers))
	for name := range p.controllers {
		names = append(names, name)
	}
	sort.Strings(names)

	ctrls := make([]*Controller, 0, len(names))
	for _, name := range names {
		ctrls = append(ctrls, p.controllers[name])
	}
	return ctrls
}

// DeleteController removes a live controller from the pool.
// Deleting an unknown name is a no-op (device teardown is idempotent).
func (p *Pool) DeleteController(fullName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.controllers, strings.ToLower(fullName))
}
