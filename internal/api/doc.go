// Package api implements the HTTP and WebSocket surface of the relay hub.
//
// This package provides:
//   - REST endpoints for actuator control, sensor ingest, and event queries
//   - WebSocket hub for real-time actuator broadcasts and inbound commands
//   - Middleware stack (request ID, logging, recovery, CORS, body limits)
//
// # Architecture
//
// The server sits between embedded devices (sensor nodes, RFID/keypad/
// face readers) and live subscribers (dashboards, wall displays). Device
// calls enter over HTTP and funnel through the relay Router; subscriber
// connections are held by the Hub, which fans out every actuator
// transition and accepts light_on/light_off commands back.
//
// # Graceful Degradation
//
// The server operates without MQTT or InfluxDB — the HTTP surface and
// WebSocket fan-out are self-contained, and the optional integrations
// only enrich them. A dead servo endpoint degrades the face-recognition
// response rather than failing it.
package api
