package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/relayhub-core/internal/event"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/relayhub-core/internal/state"
)

// StatusGrantedAccess is the exact status string devices send when an
// access attempt succeeded. Comparison is case-sensitive; any other
// string, including "Granted Access", is treated as denied.
const StatusGrantedAccess = "granted access"

// defaultPersistTimeout bounds each background snapshot write.
const defaultPersistTimeout = 5 * time.Second

// Logger defines the logging interface used by the Router.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Broadcaster pushes actuator transitions to live subscribers.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastActuatorChange(on bool)
}

// Bus mirrors state onto the MQTT message bus.
// Satisfied by *mqtt.Client; nil means the bus is disabled.
type Bus interface {
	PublishRetained(topic string, payload []byte) error
}

// Telemetry records time-series measurements.
// Satisfied by *influxdb.Client; nil means telemetry is disabled.
type Telemetry interface {
	WriteSensorReading(deviceID string, temperature, humidity float64, sampledAt time.Time)
	WriteActuatorState(actuatorID string, on bool)
}

// Deps holds the Router's dependencies.
type Deps struct {
	Registry *state.Registry
	Events   event.Repository

	// Mirror persists snapshots beyond process lifetime. Optional; nil
	// disables durable mirroring.
	Mirror state.SnapshotRepository

	// Broadcaster fans actuator transitions out to subscribers.
	// Optional; the Router works headless without one.
	Broadcaster Broadcaster

	// Bus and Telemetry are optional integrations.
	Bus       Bus
	Telemetry Telemetry

	// Forwarder relays face-recognition commands to the servo device.
	// Optional; nil reports forwarding as skipped.
	Forwarder *Forwarder

	Logger Logger

	// ActuatorID names the controlled actuator on bus topics.
	ActuatorID string

	// SensorDeviceID names the reporting sensor in telemetry. Optional.
	SensorDeviceID string

	// PersistTimeout bounds each background mirror write. Zero means the
	// default of 5 seconds.
	PersistTimeout time.Duration
}

// Router is the control-plane orchestration point. Every inbound command,
// whether it arrives over HTTP, WebSocket, or MQTT, funnels through one
// of its methods, which mutate the registry, append to the event log,
// and trigger fan-out in a single, consistent order.
//
// Persistence policy: durable-mirror writes are fire-and-forget with a
// bounded timeout. The in-memory registry is the source of truth for all
// reads; a failed or slow mirror write is logged and never gates the
// caller's response.
type Router struct {
	registry    *state.Registry
	events      event.Repository
	mirror      state.SnapshotRepository
	broadcaster Broadcaster
	bus         Bus
	telemetry   Telemetry
	forwarder   *Forwarder
	logger      Logger

	actuatorID     string
	sensorDeviceID string
	persistTimeout time.Duration
}

// New creates a Router from its dependencies.
func New(deps Deps) (*Router, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("relay: registry is required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("relay: event repository is required")
	}
	if deps.Logger == nil {
		deps.Logger = noopLogger{}
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = defaultPersistTimeout
	}

	return &Router{
		registry:       deps.Registry,
		events:         deps.Events,
		mirror:         deps.Mirror,
		broadcaster:    deps.Broadcaster,
		bus:            deps.Bus,
		telemetry:      deps.Telemetry,
		forwarder:      deps.Forwarder,
		logger:         deps.Logger,
		actuatorID:     deps.ActuatorID,
		sensorDeviceID: deps.SensorDeviceID,
		persistTimeout: deps.PersistTimeout,
	}, nil
}

// TurnOn transitions the actuator to on and returns the post-mutation
// snapshot. Direct toggles are not events: nothing is appended to the
// event log, but subscribers are notified and the snapshot is mirrored.
func (r *Router) TurnOn(ctx context.Context) state.Snapshot {
	return r.setActuator(ctx, true)
}

// TurnOff transitions the actuator to off. Symmetric to TurnOn.
func (r *Router) TurnOff(ctx context.Context) state.Snapshot {
	return r.setActuator(ctx, false)
}

func (r *Router) setActuator(_ context.Context, on bool) state.Snapshot {
	snap := r.registry.SetActuator(on)

	r.logger.Info("actuator transition", "actuator_id", r.actuatorID, "on", on)

	r.notifyActuatorChange(on)
	r.persistSnapshot(snap)

	return snap
}

// RecordAccessEvent handles an access-control occurrence (RFID scan,
// keypad entry, face recognition).
//
// A status of exactly "granted access" transitions the actuator on; any
// other status transitions it off. The transition and broadcast happen
// even when the actuator is already in the target state, so subscribers'
// view stays consistent with event history.
//
// The returned granted flag reflects the gate decision. A storage fault
// appending the event surfaces as an error after the transition and
// broadcast have already taken effect.
func (r *Router) RecordAccessEvent(ctx context.Context, evt *event.Event) (granted bool, err error) {
	granted = evt.Status == StatusGrantedAccess

	snap := r.registry.SetActuator(granted)

	appendErr := r.events.Append(ctx, evt)
	if appendErr != nil {
		r.logger.Error("event append failed",
			"category", evt.Category,
			"error", appendErr,
		)
	} else {
		r.logger.Info("access event recorded",
			"category", evt.Category,
			"event_id", evt.ID,
			"granted", granted,
		)
	}

	// Broadcast regardless of the append outcome: the registry already
	// transitioned, and subscribers must track the registry.
	r.notifyActuatorChange(granted)
	r.publishAccessEvent(evt)
	r.persistSnapshot(snap)

	return granted, appendErr
}

// RecordSensorReading applies an environmental sample to the registry
// and mirrors it to durable and time-series storage.
//
// Sensor updates are pull-only: subscribers are never notified. Clients
// that care about readings poll GET /api/sensor-data.
func (r *Router) RecordSensorReading(ctx context.Context, temperature, humidity *float64, timestamp int64, datetime string) (state.Snapshot, error) {
	snap, err := r.registry.ApplySensorReading(temperature, humidity, timestamp, datetime)
	if err != nil {
		return state.Snapshot{}, err
	}

	r.logger.Debug("sensor reading applied",
		"temperature", snap.Temperature,
		"humidity", snap.Humidity,
	)

	if r.telemetry != nil {
		sampledAt := time.Unix(snap.SampleTimestamp, 0).UTC()
		r.telemetry.WriteSensorReading(r.sensorDeviceID, snap.Temperature, snap.Humidity, sampledAt)
	}
	if r.bus != nil {
		payload, marshalErr := json.Marshal(map[string]any{
			"temperature": snap.Temperature,
			"humidity":    snap.Humidity,
			"timestamp":   snap.SampleTimestamp,
		})
		if marshalErr == nil {
			topic := mqtt.Topics{}.SensorReading(r.sensorDeviceID)
			if pubErr := r.bus.PublishRetained(topic, payload); pubErr != nil {
				r.logger.Warn("sensor reading publish failed", "error", pubErr)
			}
		}
	}

	r.persistSnapshot(snap)

	return snap, nil
}

// RecordNeutralEvent appends an event with no actuator implications.
// No state mutation, no broadcast.
func (r *Router) RecordNeutralEvent(ctx context.Context, evt *event.Event) error {
	if err := r.events.Append(ctx, evt); err != nil {
		r.logger.Error("event append failed",
			"category", evt.Category,
			"error", err,
		)
		return err
	}

	r.logger.Info("event recorded", "category", evt.Category, "event_id", evt.ID)
	return nil
}

// ForwardFace relays a face-recognition command to the servo device.
// Best-effort: the result describes the attempt and never carries a
// request-failing error.
func (r *Router) ForwardFace(ctx context.Context, cmd FaceCommand) ForwardResult {
	if r.forwarder == nil {
		return ForwardResult{Attempted: false, Message: "forwarding not configured"}
	}
	return r.forwarder.Forward(ctx, cmd)
}

// notifyActuatorChange pushes a transition to subscribers and mirrors it
// to the optional integrations.
func (r *Router) notifyActuatorChange(on bool) {
	if r.broadcaster != nil {
		r.broadcaster.BroadcastActuatorChange(on)
	}
	if r.telemetry != nil {
		r.telemetry.WriteActuatorState(r.actuatorID, on)
	}
	if r.bus != nil {
		payload, err := json.Marshal(map[string]any{
			"on":        on,
			"timestamp": time.Now().UTC().Unix(),
		})
		if err == nil {
			topic := mqtt.Topics{}.ActuatorState(r.actuatorID)
			if pubErr := r.bus.PublishRetained(topic, payload); pubErr != nil {
				r.logger.Warn("actuator state publish failed", "error", pubErr)
			}
		}
	}
}

// publishAccessEvent mirrors an access event onto the bus.
func (r *Router) publishAccessEvent(evt *event.Event) {
	if r.bus == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	topic := mqtt.Topics{}.AccessEvent(string(evt.Category))
	if pubErr := r.bus.PublishRetained(topic, payload); pubErr != nil {
		r.logger.Warn("access event publish failed", "error", pubErr)
	}
}

// persistSnapshot mirrors the snapshot in the background.
//
// Fire-and-forget with a bounded timeout: the caller's response never
// waits on the mirror, and the in-memory state stands whether or not
// the write lands.
func (r *Router) persistSnapshot(snap state.Snapshot) {
	if r.mirror == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
		defer cancel()

		if err := r.mirror.Save(ctx, snap); err != nil {
			r.logger.Error("snapshot persistence failed", "error", err)
		}
	}()
}
