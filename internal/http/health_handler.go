package http

import (
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
)

type healthResponse struct {
	Status string `json:"status"`
}

type healthHandler struct {
	checker db.HealthChecker
	logger  *slog.Logger
}

func newHealthHandler(checker db.HealthChecker, logger *slog.Logger) *healthHandler {
	return &healthHandler{
		checker: checker,
		logger:  logger,
	}
}

func (h *healthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	healthy, err := h.checker.IsHealthy(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
	}
	if !healthy {
		return writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
	}

	return writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
