package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/calderlabs/spectra-core/internal/element"
)

// resolveProperties loads the stored property rows for this device and
// coerces them against the class schema.
//
// Returns:
//   - map[string]any: Resolved values, schema defaults filled in
//   - []string: Required properties with no stored value and no default
//   - error: Store or coercion failures
func (cd *ControllerDevice) resolveProperties(ctx context.Context, info element.ClassInfo) (map[string]any, []string, error) {
	names := make([]string, 0, len(info.Properties))
	for name := range info.Properties {
		names = append(names, name)
	}

	stored, err := cd.store.DeviceProperties(ctx, cd.cfg.Name, names)
	if err != nil {
		return nil, nil, fmt.Errorf("bridge: load properties: %w", err)
	}

	props := make(map[string]any, len(info.Properties))
	var missing []string

	for name, pi := range info.Properties {
		rows, ok := stored[name]
		if !ok || len(rows) == 0 {
			if pi.Default == nil {
				missing = append(missing, name)
				continue
			}
			props[name] = pi.Default
			continue
		}

		value, err := coerceProperty(pi, rows)
		if err != nil {
			return nil, nil, fmt.Errorf("bridge: property %s: %w", name, err)
		}
		props[name] = value
	}

	return props, missing, nil
}

// coerceProperty converts stored string rows into the declared type.
// Scalars unwrap to the single row's value; arrays keep one entry per
// row.
func coerceProperty(pi element.PropertyInfo, rows []string) (any, error) {
	if pi.Format == element.FormatScalar {
		return coerceValue(pi.Kind, rows[0])
	}

	values := make([]any, 0, len(rows))
	for _, row := range rows {
		v, err := coerceValue(pi.Kind, row)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func coerceValue(kind element.PropertyKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case element.PropInteger:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", raw)
		}
		return v, nil
	case element.PropDouble:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", raw)
		}
		return v, nil
	case element.PropBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "1", "on":
			return true, nil
		case "false", "no", "0", "off":
			return false, nil
		}
		return nil, fmt.Errorf("not a boolean: %q", raw)
	default:
		return raw, nil
	}
}
