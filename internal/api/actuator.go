package api

import (
	"net/http"
	"time"
)

// actuatorResponse acknowledges a toggle with the post-mutation state.
type actuatorResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	CurrentState string `json:"currentState"`
	Timestamp    string `json:"timestamp"`
}

// statusResponse is the pull-style liveness view.
type statusResponse struct {
	State            string `json:"state"`
	ConnectedClients int    `json:"connectedClients"`
	ServerPort       int    `json:"serverPort"`
}

// handleTurnOn transitions the actuator on and broadcasts the change.
func (s *Server) handleTurnOn(w http.ResponseWriter, r *http.Request) {
	snap := s.router.TurnOn(r.Context())

	writeJSON(w, http.StatusOK, actuatorResponse{
		Status:       "success",
		Message:      "Bulb turned ON",
		CurrentState: actuatorStateString(snap.ActuatorOn),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTurnOff transitions the actuator off. Symmetric to handleTurnOn.
func (s *Server) handleTurnOff(w http.ResponseWriter, r *http.Request) {
	snap := s.router.TurnOff(r.Context())

	writeJSON(w, http.StatusOK, actuatorResponse{
		Status:       "success",
		Message:      "Bulb turned OFF",
		CurrentState: actuatorStateString(snap.ActuatorOn),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus reports actuator state and subscriber count.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		State:            actuatorStateString(s.registry.Get().ActuatorOn),
		ConnectedClients: s.hub.ClientCount(),
		ServerPort:       s.cfg.Port,
	})
}
