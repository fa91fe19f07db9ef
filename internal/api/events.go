package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nerrad567/relayhub-core/internal/event"
	"github.com/nerrad567/relayhub-core/internal/relay"
)

// rfidSourceDevice is the reader identity stamped on RFID events.
const rfidSourceDevice = "ESP32_RFID_Reader"

// eventListResponse is the shape of every history query response.
type eventListResponse struct {
	Status string           `json:"status"`
	Count  int              `json:"count"`
	Data   []map[string]any `json:"data"`
}

// rfidEventRequest is the payload from the RFID reader.
type rfidEventRequest struct {
	Status string `json:"status"`
	Tag    string `json:"tag"`
}

// keypadEventRequest is the payload from the keypad controller.
type keypadEventRequest struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Pin    string `json:"pin"`
}

// faceRecognitionRequest is the payload from the face-recognition node.
type faceRecognitionRequest struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	User     string `json:"user"`
	ServoPin int    `json:"servoPin,omitempty"`
}

// handlePostRFIDEvent records a tag scan and gates the actuator on the
// status string.
func (s *Server) handlePostRFIDEvent(w http.ResponseWriter, r *http.Request) {
	var req rfidEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	evt := &event.Event{
		Category:     event.CategoryRFID,
		Status:       req.Status,
		Subject:      req.Tag,
		SourceDevice: rfidSourceDevice,
	}
	if _, err := s.router.RecordAccessEvent(r.Context(), evt); err != nil {
		writeInternalError(w, "failed to record RFID event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "RFID event recorded",
	})
}

// handleGetRFIDEvents returns the latest RFID events, newest first.
func (s *Server) handleGetRFIDEvents(w http.ResponseWriter, r *http.Request) {
	s.listEvents(w, r, event.CategoryRFID)
}

// handlePostKeypadEvent records a PIN entry. Keypad events are neutral:
// they never move the actuator.
func (s *Server) handlePostKeypadEvent(w http.ResponseWriter, r *http.Request) {
	var req keypadEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sourceDevice := req.Type
	if sourceDevice == "" {
		sourceDevice = "keypad"
	}

	evt := &event.Event{
		Category:     event.CategoryKeypad,
		Status:       req.Status,
		Subject:      req.Pin,
		SourceDevice: sourceDevice,
	}
	if err := s.router.RecordNeutralEvent(r.Context(), evt); err != nil {
		writeInternalError(w, "failed to record keypad event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Keypad event recorded",
	})
}

// handleGetKeypadEvents returns the latest keypad events, newest first.
func (s *Server) handleGetKeypadEvents(w http.ResponseWriter, r *http.Request) {
	s.listEvents(w, r, event.CategoryKeypad)
}

// handlePostFaceRecognition records a recognition result, gates the
// actuator, and relays the command to the servo device.
//
// Forwarding is best-effort: the outcome rides inside the response and a
// dead servo never fails the request.
func (s *Server) handlePostFaceRecognition(w http.ResponseWriter, r *http.Request) {
	var req faceRecognitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Type == "" || req.Status == "" || req.User == "" {
		writeBadRequest(w, "type, status, and user are required")
		return
	}

	evt := &event.Event{
		Category:     event.CategoryFace,
		Status:       req.Status,
		Subject:      req.User,
		SourceDevice: req.Type,
	}
	if _, err := s.router.RecordAccessEvent(r.Context(), evt); err != nil {
		writeInternalError(w, "failed to record face event")
		return
	}

	forward := s.router.ForwardFace(r.Context(), relay.FaceCommand{
		Type:     req.Type,
		Status:   req.Status,
		User:     req.User,
		ServoPin: req.ServoPin,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    "Face event recorded",
		"forwarding": forward,
	})
}

// handleGetFaceEvents returns the latest face events, newest first.
func (s *Server) handleGetFaceEvents(w http.ResponseWriter, r *http.Request) {
	s.listEvents(w, r, event.CategoryFace)
}

// listEvents serves a history query for one category.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, category event.Category) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			limit = parsed
		}
		// A non-numeric limit falls through to the default rather than 400:
		// embedded callers are not worth failing over a bad query string.
	}

	events, err := s.events.QueryLatest(r.Context(), event.Filter{Category: category, Limit: limit})
	if err != nil {
		s.logger.Error("event query failed", "category", category, "error", err)
		writeInternalError(w, "failed to query events")
		return
	}

	data := make([]map[string]any, 0, len(events))
	for i := range events {
		data = append(data, eventPayload(&events[i]))
	}

	writeJSON(w, http.StatusOK, eventListResponse{
		Status: "success",
		Count:  len(data),
		Data:   data,
	})
}

// eventPayload renders an event in its category's wire shape. The
// subject field name varies: tag for RFID, pin for keypad, user for face.
func eventPayload(evt *event.Event) map[string]any {
	payload := map[string]any{
		"id":        evt.ID,
		"status":    evt.Status,
		"timestamp": evt.Timestamp,
		"datetime":  evt.Datetime,
	}
	if evt.SourceDevice != "" {
		payload["device"] = evt.SourceDevice
	}

	switch evt.Category {
	case event.CategoryRFID:
		payload["tag"] = evt.Subject
	case event.CategoryKeypad:
		payload["pin"] = evt.Subject
	case event.CategoryFace:
		payload["user"] = evt.Subject
	}

	return payload
}
