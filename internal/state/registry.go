package state

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Registry owns the single authoritative Snapshot.
//
// All mutations go through the Registry so that concurrent HTTP requests
// and WebSocket commands never interleave their read-modify-write on the
// snapshot. Reads return copies; callers never observe partial writes.
//
// All public methods are thread-safe.
type Registry struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewRegistry creates a registry with a zero-valued snapshot
// (actuator off, no sensor reading).
func NewRegistry() *Registry {
	return &Registry{}
}

// Get returns a copy of the current snapshot.
func (r *Registry) Get() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// SetActuator sets the actuator state, leaving sensor fields untouched.
// It returns a copy of the snapshot after the mutation.
//
// Persistence and fan-out are the caller's responsibility; the registry
// only guards the in-memory record.
func (r *Registry) SetActuator(on bool) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ActuatorOn = on
	return r.snap
}

// ApplySensorReading validates and applies a sensor reading.
//
// Temperature and humidity are required and must be finite numbers; they
// are rounded to one decimal place. When timestamp or datetime are absent
// (zero/empty) they are derived from the wall clock. The actuator state
// is preserved and LastUpdated is set to the call time.
//
// Parameters:
//   - temperature: Reading in degrees Celsius (nil means absent)
//   - humidity: Relative humidity percentage (nil means absent)
//   - timestamp: Caller-supplied epoch seconds, or 0 to use the server clock
//   - datetime: Caller-supplied ISO-8601 string, or "" to use the server clock
//
// Returns:
//   - Snapshot: Copy of the snapshot after the mutation
//   - error: ErrInvalidReading when temperature or humidity is missing
//     or non-numeric
func (r *Registry) ApplySensorReading(temperature, humidity *float64, timestamp int64, datetime string) (Snapshot, error) {
	if temperature == nil {
		return Snapshot{}, fmt.Errorf("%w: temperature is required", ErrInvalidReading)
	}
	if humidity == nil {
		return Snapshot{}, fmt.Errorf("%w: humidity is required", ErrInvalidReading)
	}
	if math.IsNaN(*temperature) || math.IsInf(*temperature, 0) {
		return Snapshot{}, fmt.Errorf("%w: temperature is not a finite number", ErrInvalidReading)
	}
	if math.IsNaN(*humidity) || math.IsInf(*humidity, 0) {
		return Snapshot{}, fmt.Errorf("%w: humidity is not a finite number", ErrInvalidReading)
	}

	now := time.Now().UTC()
	if timestamp == 0 {
		timestamp = now.Unix()
	}
	if datetime == "" {
		datetime = now.Format(time.RFC3339)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap.Temperature = roundTenth(*temperature)
	r.snap.Humidity = roundTenth(*humidity)
	r.snap.SampleTimestamp = timestamp
	r.snap.SampleDatetime = datetime
	r.snap.LastUpdated = &now

	return r.snap, nil
}

// Restore replaces the snapshot wholesale. Used once at startup to resume
// the last mirrored state; not part of the normal mutation path.
func (r *Registry) Restore(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
}
