package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/apperrors"
	"github.com/tailingsiq/tailingsiq-engine/pkg/auth"
	"github.com/tailingsiq/tailingsiq-engine/pkg/services"
)

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserResponse is the identity payload returned by login and whoami.
type SessionUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService    services.AuthService
	cookieSettings auth.CookieSettings
	tokenTTL       time.Duration
	logger         *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService services.AuthService, cookieSettings auth.CookieSettings, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		cookieSettings: cookieSettings,
		tokenTTL:       tokenTTL,
		logger:         logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/user", authMiddleware.RequireAuth(h.Me))
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
}

// Login handles POST /api/auth/login
// On success the signed session token is set as an httpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Email == "" || req.Password == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Email and password are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			if err := ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	auth.SetSessionCookie(w, token, h.cookieSettings, h.tokenTTL)

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	if err := WriteJSON(w, http.StatusOK, SessionUserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Me handles GET /api/auth/user
// The auth middleware has already validated the token; this re-reads the user
// row so a deleted account maps to 404 even while its token is still valid.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok || claims == nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "Not authenticated"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), claims)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "User not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to fetch current user", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, SessionUserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Logout handles POST /api/auth/logout
// Clears the session cookie; the token itself simply ages out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieSettings)

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
