package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestForward_Success(t *testing.T) {
	var received FaceCommand
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding forwarded command: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewForwarder(server.URL, time.Second, nil)
	result := f.Forward(context.Background(), FaceCommand{
		Type:     "face",
		Status:   "granted access",
		User:     "alice",
		ServoPin: 13,
	})

	if !result.Attempted || !result.Success {
		t.Errorf("result = %+v, want attempted success", result)
	}
	if received.User != "alice" || received.ServoPin != 13 {
		t.Errorf("forwarded command = %+v", received)
	}
}

func TestForward_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewForwarder(server.URL, time.Second, nil)
	result := f.Forward(context.Background(), FaceCommand{Type: "face", Status: "denied", User: "bob"})

	if !result.Attempted {
		t.Error("Attempted = false, want true")
	}
	if result.Success {
		t.Error("Success = true for a 500 response")
	}
}

func TestForward_Unreachable(t *testing.T) {
	f := NewForwarder("http://127.0.0.1:59999", 200*time.Millisecond, nil)
	result := f.Forward(context.Background(), FaceCommand{Type: "face", Status: "granted access", User: "alice"})

	if !result.Attempted {
		t.Error("Attempted = false, want true")
	}
	if result.Success {
		t.Error("Success = true for unreachable endpoint")
	}
	if result.Message == "" {
		t.Error("Message empty, want failure detail")
	}
}

func TestForward_NoEndpoint(t *testing.T) {
	f := NewForwarder("", time.Second, nil)
	result := f.Forward(context.Background(), FaceCommand{Type: "face", Status: "granted access", User: "alice"})

	if result.Attempted {
		t.Error("Attempted = true with no endpoint configured")
	}
}
