package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/usecase"
)

// JobTrigger runs the signal job once.
type JobTrigger interface {
	Trigger(ctx context.Context) (usecase.JobReport, error)
	LastReport() (usecase.JobReport, bool)
}

type CronHandler struct {
	job    JobTrigger
	secret string
	logger zerolog.Logger
}

// NewCronHandler guards the trigger with "Authorization: Bearer <secret>". An empty secret
// leaves the endpoint open.
func NewCronHandler(job JobTrigger, secret string, logger zerolog.Logger) *CronHandler {
	return &CronHandler{
		job:    job,
		secret: secret,
		logger: logger.With().Str("component", "cron_handler").Logger(),
	}
}

type cronResponse struct {
	Success bool `json:"success"`
	usecase.JobReport
}

// HandleCalculateSignals accepts GET (scheduler pings) and POST.
func (h *CronHandler) HandleCalculateSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// The run continues if the caller hangs up.
	report, err := h.job.Trigger(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, usecase.ErrJobInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("signal job failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cronResponse{Success: true, JobReport: report})
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	got := r.Header.Get("Authorization")
	want := "Bearer " + h.secret
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

type healthResponse struct {
	Status  string             `json:"status"`
	Time    time.Time          `json:"time"`
	LastRun *usecase.JobReport `json:"lastRun,omitempty"`
}

func (h *CronHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	if last, ok := h.job.LastReport(); ok {
		resp.LastRun = &last
	}
	writeJSON(w, http.StatusOK, resp)
}
