package http

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Handlers struct {
	Signals   *SignalHandler
	Cron      *CronHandler
	Analysis  *AnalysisHandler
	Tokens    *TokenHandler
	Alerts    *AlertHandler
	Websocket http.HandlerFunc
}

// NewRouter registers every route on a fresh mux and wraps it with request logging.
func NewRouter(h Handlers, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Cron.HandleHealth)
	mux.HandleFunc("/api/cron/calculate-signals", h.Cron.HandleCalculateSignals)

	mux.HandleFunc("/api/signals", h.Signals.HandleListVisible)
	mux.HandleFunc("/api/signals/top", h.Signals.HandleTop)
	mux.HandleFunc("/api/signals/latest", h.Signals.HandleLatest)
	mux.HandleFunc("/api/signals/evaluate", h.Signals.HandleEvaluate)
	mux.HandleFunc("/api/signals/config", h.Signals.HandleConfig)

	mux.HandleFunc("/api/analysis", h.Analysis.HandleAnalysis)

	mux.HandleFunc("/api/tokens/register", h.Tokens.HandleRegisterToken)
	mux.HandleFunc("/api/tokens/unregister", h.Tokens.HandleUnregisterToken)
	mux.HandleFunc("/api/tokens/count", h.Tokens.HandleGetTokenCount)

	if h.Alerts != nil {
		mux.HandleFunc("/api/alerts/pending", h.Alerts.HandlePending)
	}

	if h.Websocket != nil {
		mux.HandleFunc("/ws", h.Websocket)
	}

	return logRequests(mux, logger.With().Str("component", "http").Logger())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
