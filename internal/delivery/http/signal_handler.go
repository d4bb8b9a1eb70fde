package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/engine"
)

type SignalHandler struct {
	signals domain.SignalRepository
	cfg     engine.Config
	logger  zerolog.Logger
}

func NewSignalHandler(signals domain.SignalRepository, cfg engine.Config, logger zerolog.Logger) *SignalHandler {
	return &SignalHandler{
		signals: signals,
		cfg:     cfg,
		logger:  logger.With().Str("component", "signal_handler").Logger(),
	}
}

// HandleListVisible serves the newest signal of every coin that is shown in the UI.
func (h *SignalHandler) HandleListVisible(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	signals, err := h.signals.ListLatestVisible(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list visible signals")
		writeError(w, http.StatusInternalServerError, "failed to load signals")
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

// HandleTop serves ?min_score=&limit=. min_score defaults to the watchlist threshold and
// limit to 20.
func (h *SignalHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	minScore, err := intParam(q.Get("min_score"), int(h.cfg.Thresholds.Watchlist))
	if err != nil || minScore < 0 || minScore > 100 {
		writeError(w, http.StatusBadRequest, "min_score must be an integer between 0 and 100")
		return
	}
	limit, err := intParam(q.Get("limit"), 20)
	if err != nil || limit < 1 || limit > 500 {
		writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
		return
	}

	signals, err := h.signals.ListByScore(r.Context(), minScore, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("list signals by score")
		writeError(w, http.StatusInternalServerError, "failed to load signals")
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

func (h *SignalHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	sig, err := h.signals.GetLatest(r.Context(), symbol)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no signal for "+strings.ToUpper(symbol))
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("symbol", symbol).Msg("get latest signal")
		writeError(w, http.StatusInternalServerError, "failed to load signal")
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

type EvaluateRequest struct {
	Symbol     string          `json:"symbol"`
	Price      float64         `json:"price"`
	Indicators json.RawMessage `json:"indicators"`
	// Config is merged over the default configuration; omitted fields keep their defaults.
	Config json.RawMessage `json:"config,omitempty"`
}

// HandleEvaluate scores a caller supplied snapshot without storing anything.
func (h *SignalHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}
	if len(req.Indicators) == 0 {
		writeError(w, http.StatusBadRequest, "indicators are required")
		return
	}

	ind, err := domain.DecodeIndicatorRecord(req.Indicators)
	if err != nil {
		var decErr *domain.DecodeError
		if errors.As(err, &decErr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: decErr.Error(), Field: decErr.Field})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := h.cfg
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid config: "+err.Error())
			return
		}
		if err := cfg.Validate(); err != nil {
			var cfgErr *engine.ConfigError
			if errors.As(err, &cfgErr) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: cfgErr.Error(), Field: cfgErr.Field})
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	coin := domain.Coin{ID: strings.ToLower(symbol), Symbol: symbol, CurrentPrice: req.Price}
	writeJSON(w, http.StatusOK, engine.CalculateSignalWithConfig(ind, coin, cfg))
}

func (h *SignalHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.cfg)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
