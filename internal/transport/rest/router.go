package rest

import (
	"net/http"

	"github.com/heartmarshall/medchan-backend/internal/transport/middleware"
)

// Handlers groups every REST handler served by the router.
type Handlers struct {
	Health     *HealthHandler
	Detections *DetectionHandler
	Messages   *MessageHandler
}

// NewRouter registers every route on a ServeMux and wraps it with mw.
func NewRouter(h Handlers, mw middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /detection_data/", h.Detections.Create)
	mux.HandleFunc("GET /detection_data/", h.Detections.List)

	mux.HandleFunc("GET /messages/", h.Messages.List)

	if mw == nil {
		return mux
	}
	return mw(mux)
}
