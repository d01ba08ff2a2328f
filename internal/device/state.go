package device

import "github.com/calderlabs/spectra-core/internal/element"

// State is the bus-level operational state of a device. It is the
// vocabulary observers see; controller-domain states are mapped into it
// before publication.
type State int

// Device states.
const (
	StateUnknown State = iota
	StateOn
	StateOff
	StateOpen
	StateClose
	StateInsert
	StateExtract
	StateMoving
	StateStandby
	StateFault
	StateInit
	StateRunning
	StateAlarm
	StateDisable
)

var stateNames = map[State]string{
	StateUnknown: "UNKNOWN",
	StateOn:      "ON",
	StateOff:     "OFF",
	StateOpen:    "OPEN",
	StateClose:   "CLOSE",
	StateInsert:  "INSERT",
	StateExtract: "EXTRACT",
	StateMoving:  "MOVING",
	StateStandby: "STANDBY",
	StateFault:   "FAULT",
	StateInit:    "INIT",
	StateRunning: "RUNNING",
	StateAlarm:   "ALARM",
	StateDisable: "DISABLE",
}

// String returns the state name, or "UNKNOWN" for out-of-range values.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return stateNames[StateUnknown]
}

// elementStates maps controller-domain states to device states.
// Running hardware is reported as MOVING so generic clients animate it.
var elementStates = map[element.State]State{
	element.StateUnknown: StateUnknown,
	element.StateOn:      StateOn,
	element.StateOff:     StateOff,
	element.StateMoving:  StateMoving,
	element.StateStandby: StateStandby,
	element.StateFault:   StateFault,
	element.StateAlarm:   StateAlarm,
	element.StateInit:    StateInit,
	element.StateRunning: StateMoving,
	element.StateDisable: StateDisable,
}

// FromElementState translates a controller-domain state into the
// bus-level device state.
func FromElementState(s element.State) State {
	if mapped, ok := elementStates[s]; ok {
		return mapped
	}
	return StateUnknown
}

// Quality annotates a published attribute value.
type Quality int

// Attribute qualities. QualityValid is the zero value so an update that
// never sets a quality publishes as valid.
const (
	QualityValid Quality = iota
	QualityInvalid
	QualityAlarm
	QualityChanging
	QualityWarning
)

var qualityNames = map[Quality]string{
	QualityValid:    "VALID",
	QualityInvalid:  "INVALID",
	QualityAlarm:    "ALARM",
	QualityChanging: "CHANGING",
	QualityWarning:  "WARNING",
}

// String returns the quality name, or "INVALID" for out-of-range values.
func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return qualityNames[QualityInvalid]
}

// DataKind is the declared wire type of an attribute.
type DataKind int

// Attribute data kinds.
const (
	KindInteger DataKind = iota
	KindDouble
	KindBoolean
	KindString
	KindEncoded
)

var kindNames = map[DataKind]string{
	KindInteger: "integer",
	KindDouble:  "double",
	KindBoolean: "boolean",
	KindString:  "string",
	KindEncoded: "encoded",
}

// String returns the kind name.
func (k DataKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Encoded is an opaque payload tagged with its serialization format.
// It travels the bus as two positional parts, format then payload.
type Encoded struct {
	Format string
	Data   []byte
}
