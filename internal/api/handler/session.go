package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/api/response"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/service"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// Create starts a new empty session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.chatService.CreateSession(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		response.InternalError(w, "Failed to create session")
		return
	}

	response.OK(w, domain.NewSessionResponse{SessionID: id.String()})
}

// List returns all sessions, newest first
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		response.InternalError(w, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}

	response.OK(w, sessions)
}

// History returns the messages of one session
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	messages, err := h.chatService.History(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to load history")
		response.InternalError(w, "Failed to load history")
		return
	}

	response.OK(w, domain.HistoryResponse{Messages: messages})
}
