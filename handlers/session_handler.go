package handlers

import (
	"context"
	"net/http"

	"github.com/hogent/event-ticket-manager/middleware"
	"github.com/hogent/event-ticket-manager/utils"
	"go.uber.org/zap"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and registration
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthService defines the credential operations the HTTP layer needs
type AuthService interface {
	// Login returns a signed token for valid credentials
	Login(ctx context.Context, email, password string) (string, error)

	// Register creates a USER account and returns a signed token for it
	Register(ctx context.Context, name, email, password string) (string, error)
}

// SessionHandler handles POST /api/sessions
type SessionHandler struct {
	auth   AuthService
	logger *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(auth AuthService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		auth:   auth,
		logger: logger,
	}
}

// HandleLogin handles POST /api/sessions. The route is wrapped by the login
// throttle, so every outcome below is delayed to the same floor.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("login failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.String("reason", err.Error()))
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, TokenResponse{Token: token}); err != nil {
		h.logger.Error("failed to write login response", zap.Error(err))
	}
}
