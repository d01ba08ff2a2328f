package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAttributeChange records one attribute change event.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Non-numeric values are recorded with their string form so state
// transitions remain queryable alongside numeric trends.
//
// Parameters:
//   - dev: Device name (e.g., "motor/mot01")
//   - attribute: Attribute name (e.g., "position")
//   - value: The published value
//   - quality: Quality string of the event (e.g., "VALID")
//   - ts: Event timestamp
func (c *Client) WriteAttributeChange(dev, attribute string, value any, quality string, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{}
	switch v := value.(type) {
	case float64:
		fields["value"] = v
	case float32:
		fields["value"] = float64(v)
	case int:
		fields["value"] = float64(v)
	case int64:
		fields["value"] = float64(v)
	case bool:
		fields["value_bool"] = v
	case string:
		fields["value_str"] = v
	default:
		return
	}

	point := write.NewPoint(
		"attribute_change",
		map[string]string{
			"device":    dev,
			"attribute": attribute,
			"quality":   quality,
		},
		fields,
		ts,
	)

	c.writeAPI.WritePoint(point)
}

// WriteStateChange records one device state transition.
//
// Parameters:
//   - dev: Device name
//   - state: The new state name (e.g., "MOVING")
func (c *Client) WriteStateChange(dev, state string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"state_change",
		map[string]string{
			"device": dev,
		},
		map[string]interface{}{
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
