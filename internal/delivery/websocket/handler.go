package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 10 * time.Second

// VisibleSignals is satisfied by every domain.SignalRepository.
type VisibleSignals interface {
	ListLatestVisible(ctx context.Context) ([]domain.Signal, error)
}

// Handler streams the visible signal list to each client on a fixed interval.
type Handler struct {
	signals  VisibleSignals
	interval time.Duration
	logger   zerolog.Logger
}

func NewHandler(signals VisibleSignals, interval time.Duration, logger zerolog.Logger) *Handler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Handler{
		signals:  signals,
		interval: interval,
		logger:   logger.With().Str("component", "websocket").Logger(),
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	// The reader only exists to notice the client going away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.push(ctx, conn) {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Str("remote", r.RemoteAddr).Msg("client disconnected")
			return
		case <-ticker.C:
			if !h.push(ctx, conn) {
				return
			}
		}
	}
}

func (h *Handler) push(ctx context.Context, conn *websocket.Conn) bool {
	signals, err := h.signals.ListLatestVisible(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("load visible signals")
		return ctx.Err() == nil
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(signals); err != nil {
		h.logger.Debug().Err(err).Msg("write failed")
		return false
	}
	return true
}
