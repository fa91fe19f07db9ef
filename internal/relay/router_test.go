package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/relayhub-core/internal/event"
	"github.com/nerrad567/relayhub-core/internal/state"
)

// fakeEventRepo records appended events in memory.
type fakeEventRepo struct {
	mu        sync.Mutex
	events    []event.Event
	appendErr error
}

func (f *fakeEventRepo) Append(_ context.Context, evt *event.Event) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	evt.ID = "evt-test"
	f.events = append(f.events, *evt)
	return nil
}

func (f *fakeEventRepo) QueryLatest(_ context.Context, filter event.Filter) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event.Event
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Category == filter.Category {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeEventRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fakeBroadcaster records broadcast calls.
type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []bool
}

func (f *fakeBroadcaster) BroadcastActuatorChange(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, on)
}

func (f *fakeBroadcaster) broadcasts() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.calls...)
}

// fakeMirror signals each save on a channel so tests can wait for the
// background persistence goroutine.
type fakeMirror struct {
	saved chan state.Snapshot
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{saved: make(chan state.Snapshot, 16)}
}

func (f *fakeMirror) Save(_ context.Context, snap state.Snapshot) error {
	f.saved <- snap
	return nil
}

func (f *fakeMirror) Load(_ context.Context) (*state.Snapshot, error) {
	return nil, nil
}

func (f *fakeMirror) waitForSave(t *testing.T) state.Snapshot {
	t.Helper()
	select {
	case snap := <-f.saved:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot persistence")
		return state.Snapshot{}
	}
}

// fakeTelemetry records telemetry writes.
type fakeTelemetry struct {
	mu       sync.Mutex
	readings int
	states   []bool
}

func (f *fakeTelemetry) WriteSensorReading(string, float64, float64, time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readings++
}

func (f *fakeTelemetry) WriteActuatorState(_ string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, on)
}

type testRouter struct {
	router      *Router
	registry    *state.Registry
	events      *fakeEventRepo
	broadcaster *fakeBroadcaster
	mirror      *fakeMirror
	telemetry   *fakeTelemetry
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()

	tr := &testRouter{
		registry:    state.NewRegistry(),
		events:      &fakeEventRepo{},
		broadcaster: &fakeBroadcaster{},
		mirror:      newFakeMirror(),
		telemetry:   &fakeTelemetry{},
	}

	router, err := New(Deps{
		Registry:       tr.registry,
		Events:         tr.events,
		Mirror:         tr.mirror,
		Broadcaster:    tr.broadcaster,
		Telemetry:      tr.telemetry,
		ActuatorID:     "bulb-01",
		SensorDeviceID: "esp32-dht22",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tr.router = router
	return tr
}

func TestNew_MissingDeps(t *testing.T) {
	if _, err := New(Deps{Events: &fakeEventRepo{}}); err == nil {
		t.Error("New() without registry should fail")
	}
	if _, err := New(Deps{Registry: state.NewRegistry()}); err == nil {
		t.Error("New() without event repository should fail")
	}
}

func TestTurnOnTurnOff(t *testing.T) {
	tr := newTestRouter(t)
	ctx := context.Background()

	sequence := []bool{true, false, false, true}
	for _, on := range sequence {
		var snap state.Snapshot
		if on {
			snap = tr.router.TurnOn(ctx)
		} else {
			snap = tr.router.TurnOff(ctx)
		}
		if snap.ActuatorOn != on {
			t.Errorf("snapshot.ActuatorOn = %v, want %v", snap.ActuatorOn, on)
		}
		tr.mirror.waitForSave(t)
	}

	if got := tr.registry.Get().ActuatorOn; got != sequence[len(sequence)-1] {
		t.Errorf("final ActuatorOn = %v, want %v", got, sequence[len(sequence)-1])
	}

	// Direct toggles are not events.
	if tr.events.count() != 0 {
		t.Errorf("event count = %d, want 0", tr.events.count())
	}

	// One broadcast per transition.
	if got := tr.broadcaster.broadcasts(); len(got) != len(sequence) {
		t.Errorf("broadcast count = %d, want %d", len(got), len(sequence))
	}
}

func TestRecordAccessEvent_Granted(t *testing.T) {
	tr := newTestRouter(t)

	evt := &event.Event{
		Category:     event.CategoryRFID,
		Status:       StatusGrantedAccess,
		Subject:      "04:A3:22:B1",
		SourceDevice: "ESP32_RFID_Reader",
	}
	granted, err := tr.router.RecordAccessEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("RecordAccessEvent() error = %v", err)
	}

	if !granted {
		t.Error("granted = false, want true")
	}
	if !tr.registry.Get().ActuatorOn {
		t.Error("actuator not turned on")
	}
	if tr.events.count() != 1 {
		t.Errorf("event count = %d, want 1", tr.events.count())
	}
	if got := tr.broadcaster.broadcasts(); len(got) != 1 || !got[0] {
		t.Errorf("broadcasts = %v, want [true]", got)
	}
	tr.mirror.waitForSave(t)
}

func TestRecordAccessEvent_Denied(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{name: "denied", status: "denied access"},
		{name: "wrong case", status: "Granted Access"},
		{name: "empty", status: ""},
		{name: "padded", status: " granted access"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter(t)
			tr.registry.SetActuator(true) // denial must force it off

			evt := &event.Event{Category: event.CategoryRFID, Status: tt.status, Subject: "tag"}
			granted, err := tr.router.RecordAccessEvent(context.Background(), evt)
			if err != nil {
				t.Fatalf("RecordAccessEvent() error = %v", err)
			}

			if granted {
				t.Error("granted = true, want false")
			}
			if tr.registry.Get().ActuatorOn {
				t.Error("actuator still on after denied access")
			}
			if got := tr.broadcaster.broadcasts(); len(got) != 1 || got[0] {
				t.Errorf("broadcasts = %v, want [false]", got)
			}
			if tr.events.count() != 1 {
				t.Errorf("event count = %d, want 1 (denied events are still recorded)", tr.events.count())
			}
		})
	}
}

// A repeated grant still broadcasts: subscribers track event history,
// not just state edges.
func TestRecordAccessEvent_RepeatBroadcasts(t *testing.T) {
	tr := newTestRouter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		evt := &event.Event{Category: event.CategoryRFID, Status: StatusGrantedAccess, Subject: "tag"}
		if _, err := tr.router.RecordAccessEvent(ctx, evt); err != nil {
			t.Fatalf("RecordAccessEvent() error = %v", err)
		}
	}

	if got := tr.broadcaster.broadcasts(); len(got) != 2 {
		t.Errorf("broadcast count = %d, want 2", len(got))
	}
}

func TestRecordAccessEvent_AppendFailure(t *testing.T) {
	tr := newTestRouter(t)
	tr.events.appendErr = event.ErrStorage

	evt := &event.Event{Category: event.CategoryRFID, Status: StatusGrantedAccess, Subject: "tag"}
	granted, err := tr.router.RecordAccessEvent(context.Background(), evt)

	if !errors.Is(err, event.ErrStorage) {
		t.Errorf("error = %v, want ErrStorage", err)
	}
	if !granted {
		t.Error("granted = false, want true")
	}

	// The transition and broadcast already took effect.
	if !tr.registry.Get().ActuatorOn {
		t.Error("actuator not turned on despite storage fault")
	}
	if got := tr.broadcaster.broadcasts(); len(got) != 1 {
		t.Errorf("broadcast count = %d, want 1", len(got))
	}
}

func TestRecordSensorReading(t *testing.T) {
	tr := newTestRouter(t)

	temp, hum := 21.37, 55.04
	snap, err := tr.router.RecordSensorReading(context.Background(), &temp, &hum, 0, "")
	if err != nil {
		t.Fatalf("RecordSensorReading() error = %v", err)
	}

	if snap.Temperature != 21.4 || snap.Humidity != 55.0 {
		t.Errorf("snapshot = %v/%v, want 21.4/55.0", snap.Temperature, snap.Humidity)
	}

	// Sensor updates are pull-only.
	if got := tr.broadcaster.broadcasts(); len(got) != 0 {
		t.Errorf("broadcasts = %v, want none for sensor updates", got)
	}

	tr.telemetry.mu.Lock()
	readings := tr.telemetry.readings
	tr.telemetry.mu.Unlock()
	if readings != 1 {
		t.Errorf("telemetry readings = %d, want 1", readings)
	}

	persisted := tr.mirror.waitForSave(t)
	if persisted.Temperature != 21.4 {
		t.Errorf("persisted Temperature = %v, want 21.4", persisted.Temperature)
	}
}

func TestRecordSensorReading_Invalid(t *testing.T) {
	tr := newTestRouter(t)

	hum := 55.0
	_, err := tr.router.RecordSensorReading(context.Background(), nil, &hum, 0, "")
	if !errors.Is(err, state.ErrInvalidReading) {
		t.Errorf("error = %v, want ErrInvalidReading", err)
	}

	// Nothing downstream fires for a rejected reading.
	select {
	case <-tr.mirror.saved:
		t.Error("rejected reading was persisted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRecordNeutralEvent(t *testing.T) {
	tr := newTestRouter(t)
	tr.registry.SetActuator(true)

	evt := &event.Event{Category: event.CategoryKeypad, Status: "entered", Subject: "1234"}
	if err := tr.router.RecordNeutralEvent(context.Background(), evt); err != nil {
		t.Fatalf("RecordNeutralEvent() error = %v", err)
	}

	if tr.events.count() != 1 {
		t.Errorf("event count = %d, want 1", tr.events.count())
	}
	if !tr.registry.Get().ActuatorOn {
		t.Error("neutral event mutated actuator state")
	}
	if got := tr.broadcaster.broadcasts(); len(got) != 0 {
		t.Errorf("broadcasts = %v, want none for neutral events", got)
	}
}

func TestRecordNeutralEvent_StorageFault(t *testing.T) {
	tr := newTestRouter(t)
	tr.events.appendErr = event.ErrStorage

	evt := &event.Event{Category: event.CategoryKeypad, Subject: "1234"}
	err := tr.router.RecordNeutralEvent(context.Background(), evt)
	if !errors.Is(err, event.ErrStorage) {
		t.Errorf("error = %v, want ErrStorage", err)
	}
}

func TestForwardFace_NotConfigured(t *testing.T) {
	tr := newTestRouter(t)

	result := tr.router.ForwardFace(context.Background(), FaceCommand{Type: "face", Status: "granted access", User: "alice"})
	if result.Attempted {
		t.Error("Attempted = true without a forwarder")
	}
}

func TestHandleActuatorSet(t *testing.T) {
	tr := newTestRouter(t)
	topic := "relayhub/actuator/bulb-01/set"

	if err := tr.router.HandleActuatorSet(topic, []byte(`{"on":true}`)); err != nil {
		t.Fatalf("HandleActuatorSet() error = %v", err)
	}
	if !tr.registry.Get().ActuatorOn {
		t.Error("actuator not turned on via bus")
	}

	if err := tr.router.HandleActuatorSet(topic, []byte(`{"on":false}`)); err != nil {
		t.Fatalf("HandleActuatorSet() error = %v", err)
	}
	if tr.registry.Get().ActuatorOn {
		t.Error("actuator not turned off via bus")
	}
}

func TestHandleActuatorSet_Malformed(t *testing.T) {
	tr := newTestRouter(t)
	topic := "relayhub/actuator/bulb-01/set"

	if err := tr.router.HandleActuatorSet(topic, []byte(`not json`)); err == nil {
		t.Error("HandleActuatorSet() accepted malformed payload")
	}
	if err := tr.router.HandleActuatorSet(topic, []byte(`{}`)); err == nil {
		t.Error("HandleActuatorSet() accepted payload without on field")
	}

	if tr.registry.Get().ActuatorOn {
		t.Error("malformed payload mutated state")
	}
}
