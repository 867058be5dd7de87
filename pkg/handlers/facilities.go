package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/apperrors"
	"github.com/tailingsiq/tailingsiq-engine/pkg/auth"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
)

// CreateFacilityRequest is the body for POST /api/facilities.
type CreateFacilityRequest struct {
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
}

// UpdateFacilityRequest is the body for PUT /api/facilities/{id}.
// Omitted fields retain their prior values.
type UpdateFacilityRequest struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// FacilityHandler handles facility HTTP requests.
type FacilityHandler struct {
	facilities repositories.FacilityRepository
	logger     *zap.Logger
}

// NewFacilityHandler creates a new facility handler.
func NewFacilityHandler(facilities repositories.FacilityRepository, logger *zap.Logger) *FacilityHandler {
	return &FacilityHandler{
		facilities: facilities,
		logger:     logger,
	}
}

// RegisterRoutes registers the facility handler's routes on the given mux.
func (h *FacilityHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/facilities", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/facilities",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Create))
	mux.HandleFunc("GET /api/facilities/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/facilities/{id}",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Update))
	mux.HandleFunc("DELETE /api/facilities/{id}",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Delete))
}

// List handles GET /api/facilities
func (h *FacilityHandler) List(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.facilities.GetAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list facilities", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if facilities == nil {
		facilities = []*models.Facility{}
	}

	if err := WriteJSON(w, http.StatusOK, facilities); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/facilities/{id}
func (h *FacilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	facility, err := h.facilities.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Facility not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get facility", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, facility); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Create handles POST /api/facilities
func (h *FacilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Name == "" || req.Location == "" || req.Status == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Name, location, and status are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if !models.IsValidFacilityStatus(req.Status) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid status"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	facility := &models.Facility{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
	}

	if err := h.facilities.Create(r.Context(), facility); err != nil {
		h.logger.Error("Failed to create facility", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, facility); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Update handles PUT /api/facilities/{id}
func (h *FacilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Status != nil && !models.IsValidFacilityStatus(*req.Status) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid status"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	facility, err := h.facilities.Update(r.Context(), id, repositories.UpdateFacilityParams{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNothingToUpdate):
			if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "Nothing to update"}); err != nil {
				h.logger.Error("Failed to encode response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "Facility not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			h.logger.Error("Failed to update facility", zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, facility); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Delete handles DELETE /api/facilities/{id}
func (h *FacilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.facilities.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Facility not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete facility", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
