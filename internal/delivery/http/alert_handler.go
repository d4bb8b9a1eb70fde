package http

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
)

type AlertHandler struct {
	alerts domain.AlertRepository
	logger zerolog.Logger
}

func NewAlertHandler(alerts domain.AlertRepository, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
		logger: logger.With().Str("component", "alert_handler").Logger(),
	}
}

// HandlePending lists alerts whose delivery failed within the lookback window
// (?since=2h, default 24h).
func (h *AlertHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	lookback := 24 * time.Hour
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "since must be a positive duration")
			return
		}
		lookback = d
	}

	pending, err := h.alerts.ListPending(r.Context(), time.Now().Add(-lookback))
	if err != nil {
		h.logger.Error().Err(err).Msg("list pending alerts")
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if pending == nil {
		pending = []domain.SignalAlert{}
	}
	writeJSON(w, http.StatusOK, pending)
}
