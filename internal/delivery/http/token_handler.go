package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
)

type TokenHandler struct {
	tokens domain.DeviceTokenStore
	logger zerolog.Logger
}

func NewTokenHandler(tokens domain.DeviceTokenStore, logger zerolog.Logger) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		logger: logger.With().Str("component", "token_handler").Logger(),
	}
}

type RegisterTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type TokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *TokenHandler) HandleRegisterToken(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Platform == "" {
		req.Platform = "android"
	}

	if err := h.tokens.RegisterToken(r.Context(), req.Token, req.Platform); err != nil {
		h.logger.Error().Err(err).Msg("register token")
		writeError(w, http.StatusInternalServerError, "failed to register token")
		return
	}
	h.respond(w, r, "Token registered successfully")
}

func (h *TokenHandler) HandleUnregisterToken(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.tokens.UnregisterToken(r.Context(), req.Token); err != nil {
		h.logger.Error().Err(err).Msg("unregister token")
		writeError(w, http.StatusInternalServerError, "failed to unregister token")
		return
	}
	h.respond(w, r, "Token unregistered successfully")
}

func (h *TokenHandler) HandleGetTokenCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.respond(w, r, "Token count retrieved")
}

func (h *TokenHandler) decode(w http.ResponseWriter, r *http.Request) (RegisterTokenRequest, bool) {
	var req RegisterTokenRequest
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.Token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *TokenHandler) respond(w http.ResponseWriter, r *http.Request, msg string) {
	count, err := h.tokens.GetTokenCount(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("count tokens")
		writeError(w, http.StatusInternalServerError, "failed to count tokens")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Success: true, Message: msg, Count: count})
}
