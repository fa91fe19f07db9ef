package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultForwardTimeout bounds each forwarding call to the servo device.
const defaultForwardTimeout = 3 * time.Second

// FaceCommand is the payload relayed to the servo device after a face
// recognition result.
type FaceCommand struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	User     string `json:"user"`
	ServoPin int    `json:"servoPin,omitempty"`
}

// ForwardResult describes the outcome of a best-effort forwarding call.
// A failed attempt is reported here, never as a request-failing error.
type ForwardResult struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// Forwarder relays commands to the downstream servo device over HTTP.
//
// The servo endpoint is an embedded device on a flaky network link, so
// every call is bounded by a short timeout and failure degrades the
// response rather than failing it.
type Forwarder struct {
	endpoint string
	client   *http.Client
	logger   Logger
}

// NewForwarder creates a Forwarder targeting the given endpoint.
// A zero timeout falls back to 3 seconds.
func NewForwarder(endpoint string, timeout time.Duration, logger Logger) *Forwarder {
	if timeout <= 0 {
		timeout = defaultForwardTimeout
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Forwarder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Forward POSTs the command to the servo endpoint and reports the
// outcome. Network faults and non-2xx responses are absorbed into the
// result.
func (f *Forwarder) Forward(ctx context.Context, cmd FaceCommand) ForwardResult {
	if f.endpoint == "" {
		return ForwardResult{Attempted: false, Message: "no servo endpoint configured"}
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return ForwardResult{Attempted: false, Message: fmt.Sprintf("encoding command: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return ForwardResult{Attempted: false, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("servo forwarding failed", "endpoint", f.endpoint, "error", err)
		return ForwardResult{Attempted: true, Success: false, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort drain

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Best-effort drain

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("servo rejected command", "endpoint", f.endpoint, "status", resp.StatusCode)
		return ForwardResult{
			Attempted: true,
			Success:   false,
			Message:   fmt.Sprintf("servo responded %d", resp.StatusCode),
		}
	}

	return ForwardResult{Attempted: true, Success: true, Message: "command forwarded"}
}
