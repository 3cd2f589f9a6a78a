package api

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/varsilias/chat-relay/internal/apperr"
	"github.com/varsilias/chat-relay/internal/buildinfo"
	"github.com/varsilias/chat-relay/internal/chat"
	"github.com/varsilias/chat-relay/internal/middleware"
	"github.com/varsilias/chat-relay/internal/session"
	"github.com/varsilias/chat-relay/pkg/types"
	"github.com/varsilias/chat-relay/pkg/utils"
)

// Replies shown to the browser. Internal error detail never leaves the server.
const (
	ReplyEmptyInput = "Nenhuma mensagem recebida."
	ReplyInternal   = "Desculpe, ocorreu um erro interno ao processar sua solicitação."
)

type Handlers struct {
	log      *zap.SugaredLogger
	chat     *chat.Controller
	sessions *session.Store
}

func NewHandlers(log *zap.SugaredLogger, chatCtrl *chat.Controller, store *session.Store) *Handlers {
	return &Handlers{
		log:      log,
		chat:     chatCtrl,
		sessions: store,
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat POST /chat {message, session_id?} -> {reply}
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil || req.Message == "" {
		utils.JSON(w, http.StatusBadRequest, chatResponse{Reply: ReplyEmptyInput})
		return
	}
	if req.SessionID == "" {
		req.SessionID = session.DefaultSessionID
	}

	msg, latency, err := h.chat.Chat(r.Context(), req.SessionID, req.Message)
	switch {
	case err == nil:
		utils.JSON(w, http.StatusOK, chatResponse{Reply: msg.Content})
	case errors.Is(err, apperr.ErrEmptyInput):
		utils.JSON(w, http.StatusBadRequest, chatResponse{Reply: ReplyEmptyInput})
	default:
		h.log.Warnw("chat request failed",
			"session_id", req.SessionID,
			"req_id", middleware.GetRequestID(r.Context()),
			"latency_ms", latency.Milliseconds(),
			"error", err,
		)
		utils.JSON(w, http.StatusInternalServerError, chatResponse{Reply: ReplyInternal})
	}
}

// Health is a basic liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"status":    true,
		"message":   "chat-relay",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"built_at": buildinfo.BuiltAt,
	})
}

type historyItem struct {
	Role    types.Role `json:"role"`
	Content string     `json:"content"`
}

// GetHistory GET /api/history/{sessionID}
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	history, ok := h.sessions.Get(sessionID)
	if !ok {
		utils.JSON(w, http.StatusNotFound, map[string]any{"error": "session not found"})
		return
	}

	out := lo.Map(history, func(m types.Message, _ int) historyItem {
		return historyItem{Role: m.Role, Content: m.Content}
	})
	utils.JSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "history": out})
}

// ListSessions GET /api/sessions
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{"sessions": h.sessions.List()})
}
