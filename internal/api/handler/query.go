package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/api/response"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/service"
)

// QueryHandler handles query endpoints
type QueryHandler struct {
	chatService *service.ChatService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(chatService *service.ChatService) *QueryHandler {
	return &QueryHandler{chatService: chatService}
}

// Execute answers a question
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationDetail(err))
		return
	}

	result, err := h.chatService.Ask(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			response.BadRequest(w, "Invalid session ID")
			return
		}
		log.Error().Err(err).Msg("Query failed")
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, result)
}
