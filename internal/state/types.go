package state

import (
	"math"
	"time"
)

// Snapshot is the authoritative current state of the hub: the actuator
// (bulb) state and the most recent sensor reading.
//
// There is exactly one Snapshot per process, owned by the Registry. It is
// mutated in place by the command router and never deleted, only
// overwritten (last-writer-wins).
//
// JSON field names match the wire format the embedded devices and UI
// clients already speak.
type Snapshot struct {
	// ActuatorOn reports whether the controlled bulb is on.
	ActuatorOn bool `json:"bulbState"`

	// Temperature is the latest reading in degrees Celsius, one decimal.
	Temperature float64 `json:"temperature"`

	// Humidity is the latest relative humidity percentage, one decimal.
	Humidity float64 `json:"humidity"`

	// SampleTimestamp is the reading's epoch-seconds timestamp.
	SampleTimestamp int64 `json:"timestamp"`

	// SampleDatetime is the reading's ISO-8601 representation.
	SampleDatetime string `json:"datetime"`

	// LastUpdated is when the snapshot last accepted a sensor reading.
	// Nil until the first reading arrives.
	LastUpdated *time.Time `json:"lastUpdated"`
}

// roundTenth rounds a value to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
