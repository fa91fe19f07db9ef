package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Actuator control. Embedded switches hit these with bare GETs, which
	// is why they are not POSTs.
	r.Get("/on", s.handleTurnOn)
	r.Get("/off", s.handleTurnOff)
	r.Get("/status", s.handleStatus)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Environmental telemetry
		r.Post("/sensor-data", s.handlePostSensorData)
		r.Get("/sensor-data", s.handleGetSensorData)

		// Access-control events
		r.Post("/rfid-event", s.handlePostRFIDEvent)
		r.Get("/rfid-events", s.handleGetRFIDEvents)

		r.Post("/keypad-events", s.handlePostKeypadEvent)
		r.Get("/keypad-events", s.handleGetKeypadEvents)

		r.Post("/face-recognition", s.handlePostFaceRecognition)
		r.Get("/face-events", s.handleGetFaceEvents)
	})

	// WebSocket subscribers
	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = "/ws"
	}
	r.Get(wsPath, s.handleWebSocket)

	return r
}
