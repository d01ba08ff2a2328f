// Package properties persists controller device properties in SQLite.
//
// Values are stored as raw string rows, one per array element, and
// coerced against the controller class schema by the consumer. This
// mirrors how the control system database exposes properties and keeps
// the store schema-agnostic.
package properties
