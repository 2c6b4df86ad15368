package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/api/response"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/service"
)

var validate = validator.New()

// validationDetail turns validator errors into a field to message map
func validationDetail(err error) any {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	detail := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			detail[e.Field()] = "field is required"
		case "max":
			detail[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			detail[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return detail
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationDetail(err))
		return
	}

	token, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn().Str("username", input.Username).Msg("Login rejected")
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, domain.LoginResponse{Token: token})
}
