package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nerrad567/relayhub-core/internal/state"
)

// sensorDataRequest is the ingest payload from sensor nodes.
//
// Temperature and humidity are pointers so a missing field is
// distinguishable from a zero reading.
type sensorDataRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Timestamp   int64    `json:"timestamp,omitempty"`
	Datetime    string   `json:"datetime,omitempty"`
}

// handlePostSensorData ingests an environmental sample.
func (s *Server) handlePostSensorData(w http.ResponseWriter, r *http.Request) {
	var req sensorDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	snap, err := s.router.RecordSensorReading(r.Context(), req.Temperature, req.Humidity, req.Timestamp, req.Datetime)
	if err != nil {
		if errors.Is(err, state.ErrInvalidReading) {
			writeBadRequest(w, "temperature and humidity are required and must be numeric")
			return
		}
		s.logger.Error("sensor ingest failed", "error", err)
		writeInternalError(w, "failed to record sensor data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Sensor data recorded",
		"receivedData": map[string]float64{
			"temperature": snap.Temperature,
			"humidity":    snap.Humidity,
		},
	})
}

// handleGetSensorData returns the current snapshot. Sensor state is
// pull-only: subscribers are never pushed readings, they poll here.
func (s *Server) handleGetSensorData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"data":       s.registry.Get(),
		"serverTime": time.Now().UTC().Format(time.RFC3339),
	})
}
