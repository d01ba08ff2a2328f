package device

import (
	"fmt"
	"strings"
	"sync"
)

// Table holds the declared attributes of a device, keyed
// case-insensitively by name.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Attributes are only
//     added during device initialisation, but lookups race with it.
type Table struct {
	mu    sync.RWMutex
	attrs map[string]*Attribute
}

// NewTable creates an empty attribute table.
func NewTable() *Table {
	return &Table{attrs: make(map[string]*Attribute)}
}

// Declare adds an attribute to the table, replacing any previous
// declaration under the same name.
func (t *Table) Declare(attr *Attribute) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attrs[strings.ToLower(attr.Name())] = attr
}

// Get returns the attribute with the given name (case-insensitive).
// Returns ErrUnknownAttribute if the name was never declared.
func (t *Table) Get(name string) (*Attribute, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	attr, ok := t.attrs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	return attr, nil
}

// Lookup returns the attribute with the given name, or false when the
// name was never declared. Callers that treat a miss as routine use this
// instead of Get.
func (t *Table) Lookup(name string) (*Attribute, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	attr, ok := t.attrs[strings.ToLower(name)]
	return attr, ok
}

// Names returns the declared attribute names in lower case.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.attrs))
	for name := range t.attrs {
		names = append(names, name)
	}
	return names
}
