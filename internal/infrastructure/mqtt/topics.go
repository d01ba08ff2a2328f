package mqtt

import "fmt"

// Topic prefixes for the Spectra device bus.
//
// The hierarchy is flat: spectra/{category}/{device}[/{attribute}].
// Device names contain slashes ("motor/mot01"); they are embedded as-is,
// which keeps topics readable and still wildcard-matchable.
const (
	// TopicPrefix is the base for all Spectra topics.
	TopicPrefix = "spectra"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "spectra/system"
)

// Topics provides builders for Spectra MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.AttributeEvent("motor/mot01", "position")
//	// Returns: "spectra/event/motor/mot01/position"
type Topics struct{}

// AttributeEvent returns the topic for attribute change events.
//
// Example: spectra/event/motor/mot01/position
func (Topics) AttributeEvent(device, attribute string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, device, attribute)
}

// DeviceState returns the retained device state topic.
//
// Example: spectra/state/motor/mot01
func (Topics) DeviceState(device string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, device)
}

// DeviceStatus returns the retained device status topic.
//
// Example: spectra/status/motor/mot01
func (Topics) DeviceStatus(device string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefix, device)
}

// SystemStatus returns the system status topic.
//
// Example: spectra/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllAttributeEvents returns a pattern matching every attribute event.
//
// Pattern: spectra/event/#
func (Topics) AllAttributeEvents() string {
	return fmt.Sprintf("%s/event/#", TopicPrefix)
}

// AllDeviceStates returns a pattern matching every retained state document.
//
// Pattern: spectra/state/#
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/state/#", TopicPrefix)
}

// AllTopics returns a pattern matching all Spectra topics.
// Use with caution, this receives ALL traffic.
//
// Pattern: spectra/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
