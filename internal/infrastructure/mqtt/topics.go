package mqtt

import "fmt"

// Topic prefixes for the relay hub message bus.
//
// All topics use the scheme: relayhub/{category}/{id}/{suffix}
const (
	// TopicPrefix is the base for all relay hub topics.
	TopicPrefix = "relayhub"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "relayhub/system"
)

// Topics provides builders for relay hub MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ActuatorState("bulb-01")
//	// Returns: "relayhub/actuator/bulb-01/state"
type Topics struct{}

// ActuatorState returns the topic for authoritative actuator state,
// published by the hub after every command.
//
// Example: relayhub/actuator/bulb-01/state
func (Topics) ActuatorState(actuatorID string) string {
	return fmt.Sprintf("%s/actuator/%s/state", TopicPrefix, actuatorID)
}

// ActuatorSet returns the topic on which external publishers request an
// actuator change. The hub subscribes here and routes the request through
// the same path as HTTP and WebSocket commands.
//
// Example: relayhub/actuator/bulb-01/set
func (Topics) ActuatorSet(actuatorID string) string {
	return fmt.Sprintf("%s/actuator/%s/set", TopicPrefix, actuatorID)
}

// SensorReading returns the topic for environmental telemetry mirrored
// from a sensor device.
//
// Example: relayhub/sensor/esp32-dht22/reading
func (Topics) SensorReading(deviceID string) string {
	return fmt.Sprintf("%s/sensor/%s/reading", TopicPrefix, deviceID)
}

// AccessEvent returns the topic for access-control event notifications.
//
// Example: relayhub/access/rfid/event
func (Topics) AccessEvent(category string) string {
	return fmt.Sprintf("%s/access/%s/event", TopicPrefix, category)
}

// SystemStatus returns the hub online/offline status topic.
//
// Example: relayhub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllActuatorSets returns a pattern matching set requests for every
// actuator.
//
// Pattern: relayhub/actuator/+/set
func (Topics) AllActuatorSets() string {
	return fmt.Sprintf("%s/actuator/+/set", TopicPrefix)
}
