package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorReading records an environmental sample from a sensor device.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Identifier of the reporting sensor (e.g., "esp32-dht22")
//   - temperature: Temperature in degrees Celsius
//   - humidity: Relative humidity percentage
//   - sampledAt: When the device took the sample
func (c *Client) WriteSensorReading(deviceID string, temperature, humidity float64, sampledAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"environment",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"temperature_c":    temperature,
			"humidity_percent": humidity,
		},
		sampledAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteActuatorState records an actuator transition.
//
// Charting on/off history lets dashboards reconstruct duty cycles
// without replaying the event log.
func (c *Client) WriteActuatorState(actuatorID string, on bool) {
	if !c.IsConnected() {
		return
	}

	state := 0
	if on {
		state = 1
	}

	point := write.NewPoint(
		"actuator",
		map[string]string{
			"actuator_id": actuatorID,
		},
		map[string]interface{}{
			"on": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
