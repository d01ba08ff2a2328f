// Package influxdb wraps the InfluxDB v2 client for attribute history
// archiving.
//
// Attribute change events and state transitions are written as
// non-blocking batched points. Archiving is optional; when disabled in
// configuration the rest of the system runs without it.
package influxdb
