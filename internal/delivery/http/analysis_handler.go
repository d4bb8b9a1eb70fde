package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
)

// IndicatorSource is satisfied by usecase.IndicatorService.
type IndicatorSource interface {
	Swing(ctx context.Context, symbol string) (*domain.SwingIndicators, error)
	Scalp(ctx context.Context, symbol string) (*domain.ScalpIndicators, error)
}

type AnalysisHandler struct {
	indicators IndicatorSource
	prices     domain.PriceSource
	logger     zerolog.Logger
}

func NewAnalysisHandler(indicators IndicatorSource, prices domain.PriceSource, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		indicators: indicators,
		prices:     prices,
		logger:     logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// HandleAnalysis serves ?symbol=&mode=swing|scalp as a tagged payload for an external
// text analyzer.
func (h *AnalysisHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	symbol := strings.ToUpper(strings.TrimSpace(q.Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	mode, err := domain.ParseStrategyMode(q.Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	var req domain.AnalysisRequest
	switch mode {
	case domain.ModeScalp:
		ind, err := h.indicators.Scalp(ctx, symbol)
		if err != nil {
			h.unavailable(w, symbol, err)
			return
		}
		coin, err := h.prices.GetCoin(ctx, symbol)
		if err != nil {
			if ind.VWAP == nil {
				h.unavailable(w, symbol, err)
				return
			}
			coin = domain.Coin{Symbol: symbol, CurrentPrice: *ind.VWAP}
		}
		req = domain.NewScalpAnalysis(coin, *ind)
	default:
		ind, err := h.indicators.Swing(ctx, symbol)
		if err != nil {
			h.unavailable(w, symbol, err)
			return
		}
		coin, err := h.prices.GetCoin(ctx, symbol)
		if err != nil {
			if ind.MA == nil {
				h.unavailable(w, symbol, err)
				return
			}
			coin = domain.Coin{Symbol: symbol, CurrentPrice: *ind.MA}
		}
		req = domain.NewSwingAnalysis(coin, *ind)
	}

	body, err := domain.MarshalAnalysis(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode analysis")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (h *AnalysisHandler) unavailable(w http.ResponseWriter, symbol string, err error) {
	h.logger.Warn().Err(err).Str("symbol", symbol).Msg("analysis data unavailable")
	var decErr *domain.DecodeError
	if errors.As(err, &decErr) {
		writeError(w, http.StatusUnprocessableEntity, decErr.Error())
		return
	}
	writeError(w, http.StatusBadGateway, "market data unavailable for "+symbol)
}
