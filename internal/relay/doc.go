// Package relay implements the hub's control plane.
//
// The Router is the single orchestration point: commands from HTTP
// handlers, WebSocket subscribers, and MQTT all funnel through it, and
// it applies them in one consistent order — mutate the state registry,
// append to the event log where the command is event-typed, fan out to
// subscribers, mirror to durable storage.
//
// # Persistence policy
//
// Durable-mirror writes are fire-and-forget with a bounded timeout. The
// in-memory registry is the source of truth for all reads; a failed or
// slow mirror write is logged and never gates the caller's response.
// Event appends are the exception: they are awaited, and a storage
// fault surfaces to the caller as a 500-class response.
//
// # Access gate
//
// Access-control events carry a status string from the device. Exactly
// "granted access" (case-sensitive) opens the actuator; anything else
// forces it off. Every access event forces a transition and a broadcast
// even when the actuator is already in the target state, so subscribers'
// view never drifts from event history.
//
// The Forwarder relays face-recognition commands to the downstream
// servo device. Forwarding is best-effort: the outcome is reported
// inside the response payload, and a dead servo never turns a valid
// request into an HTTP failure.
package relay
