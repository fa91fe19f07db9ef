package relay

import (
	"context"
	"encoding/json"
	"fmt"
)

// HandleActuatorSet processes an actuator set request arriving over the
// message bus (relayhub/actuator/+/set).
//
// The payload is JSON: {"on": true|false}. Requests route through the
// same TurnOn/TurnOff path as HTTP and WebSocket commands, so bus
// callers get identical broadcast and persistence behaviour. Malformed
// payloads are rejected with an error, which the MQTT layer logs and
// drops.
func (r *Router) HandleActuatorSet(topic string, payload []byte) error {
	var req struct {
		On *bool `json:"on"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("relay: parsing set request on %s: %w", topic, err)
	}
	if req.On == nil {
		return fmt.Errorf("relay: set request on %s missing \"on\" field", topic)
	}

	if *req.On {
		r.TurnOn(context.Background())
	} else {
		r.TurnOff(context.Background())
	}

	return nil
}
