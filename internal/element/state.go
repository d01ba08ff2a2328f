package element

// State is the controller-domain operational state of an element or
// controller. It is the hardware-facing vocabulary; the device layer maps
// it into the bus-level device state.
type State int

// Controller-domain states.
const (
	StateUnknown State = iota
	StateOn
	StateOff
	StateMoving
	StateStandby
	StateFault
	StateAlarm
	StateInit
	StateRunning
	StateDisable
)

var stateNames = map[State]string{
	StateUnknown: "Unknown",
	StateOn:      "On",
	StateOff:     "Off",
	StateMoving:  "Moving",
	StateStandby: "Standby",
	StateFault:   "Fault",
	StateAlarm:   "Alarm",
	StateInit:    "Init",
	StateRunning: "Running",
	StateDisable: "Disable",
}

// String returns the state name, or "Unknown" for out-of-range values.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return stateNames[StateUnknown]
}
