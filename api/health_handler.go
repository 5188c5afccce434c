package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthResponse reports liveness
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime" example:"3600.5"`
}

type healthHandler struct {
	responder   Responder
	startupTime time.Time
	now         func() time.Time
}

func newHealthHandler(startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		startupTime: startupTime,
		now:         time.Now,
	}
}

// getHealth always answers 200 while the process is serving
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := h.now()
		h.responder.WriteJSON(w, HealthResponse{
			Status:    "ok",
			Timestamp: now.UTC(),
			Uptime:    now.Sub(h.startupTime).Seconds(),
		})
	}
}
