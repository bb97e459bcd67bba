package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/vasapolrittideah/notes-api/shared/response"
)

type InfoResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
}

const healthTimeout = 2 * time.Second

func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, InfoResponse{
		Name:        h.info.Name,
		Version:     h.info.Version,
		Description: h.info.Description,
	})
}

// Health reports liveness together with document store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("health check failed")
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	response.JSON(w, code, HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startedAt).Seconds(),
		Environment: h.info.Environment,
	})
}
