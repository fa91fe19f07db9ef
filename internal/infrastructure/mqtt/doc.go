// Package mqtt provides optional MQTT connectivity for the relay hub.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Role
//
// MQTT mirrors the hub's actuator state and sensor telemetry onto a
// message bus so dashboards and other services can observe the
// installation without speaking the hub's HTTP or WebSocket surface.
// The hub also accepts actuator set requests over MQTT, routing them
// through the same command path as every other transport.
//
//	Embedded Devices → Relay Hub ↔ MQTT Broker ↔ Dashboards / Services
//
// The bus is entirely optional: when mqtt.enabled is false in config the
// hub runs standalone and nothing in this package is started.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.ActuatorState("bulb-01")
//	client.PublishRetained(topic, []byte(`{"on":true}`))
package mqtt
