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
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
)

// CreateComplianceRequest is the body for POST /api/compliance.
type CreateComplianceRequest struct {
	FacilityID    string  `json:"facility_id"`
	RequirementID string  `json:"requirement_id"`
	Status        string  `json:"status"`
	NextCheckDate *string `json:"next_check_date,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// UpdateComplianceRequest is the body for PUT /api/compliance/{id}.
// Omitted fields retain their prior values.
type UpdateComplianceRequest struct {
	Status        *string `json:"status,omitempty"`
	NextCheckDate *string `json:"next_check_date,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ComplianceHandler handles compliance record HTTP requests.
type ComplianceHandler struct {
	compliance repositories.ComplianceRepository
	logger     *zap.Logger
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(compliance repositories.ComplianceRepository, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		compliance: compliance,
		logger:     logger,
	}
}

// RegisterRoutes registers the compliance handler's routes on the given mux.
func (h *ComplianceHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/compliance", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/compliance",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Create))
	mux.HandleFunc("GET /api/compliance/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/compliance/{id}",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Update))
	mux.HandleFunc("DELETE /api/compliance/{id}",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Delete))
	mux.HandleFunc("GET /api/facilities/{id}/compliance", authMiddleware.RequireAuth(h.ListByFacility))
	mux.HandleFunc("GET /api/facilities/{id}/compliance/status", authMiddleware.RequireAuth(h.StatusByFacility))
}

// List handles GET /api/compliance
func (h *ComplianceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.compliance.GetAll(r.Context())
	h.writeRecords(w, records, err)
}

// ListByFacility handles GET /api/facilities/{id}/compliance
func (h *ComplianceHandler) ListByFacility(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	records, err := h.compliance.GetByFacility(r.Context(), id)
	h.writeRecords(w, records, err)
}

func (h *ComplianceHandler) writeRecords(w http.ResponseWriter, records []*models.ComplianceRecord, err error) {
	if err != nil {
		h.logger.Error("Failed to list compliance records", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if records == nil {
		records = []*models.ComplianceRecord{}
	}

	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// StatusByFacility handles GET /api/facilities/{id}/compliance/status
func (h *ComplianceHandler) StatusByFacility(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.compliance.GetComplianceStatus(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to aggregate compliance status", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/compliance/{id}
func (h *ComplianceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.compliance.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Compliance record not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get compliance record", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Create handles POST /api/compliance
func (h *ComplianceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.FacilityID == "" || req.RequirementID == "" || req.Status == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Facility ID, requirement ID, and status are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid facility ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if !models.IsValidComplianceStatus(req.Status) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid status"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	nextCheck, ok := h.parseNextCheckDate(w, req.NextCheckDate)
	if !ok {
		return
	}

	record := &models.ComplianceRecord{
		FacilityID:    facilityID,
		RequirementID: req.RequirementID,
		Status:        req.Status,
		NextCheckDate: nextCheck,
		Notes:         req.Notes,
	}

	if err := h.compliance.Create(r.Context(), record); err != nil {
		h.logger.Error("Failed to create compliance record", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Update handles PUT /api/compliance/{id}
func (h *ComplianceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Status != nil && !models.IsValidComplianceStatus(*req.Status) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid status"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	nextCheck, ok := h.parseNextCheckDate(w, req.NextCheckDate)
	if !ok {
		return
	}

	record, err := h.compliance.Update(r.Context(), id, repositories.UpdateComplianceParams{
		Status:        req.Status,
		NextCheckDate: nextCheck,
		Notes:         req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNothingToUpdate):
			if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "Nothing to update"}); err != nil {
				h.logger.Error("Failed to encode response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "Compliance record not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			h.logger.Error("Failed to update compliance record", zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Delete handles DELETE /api/compliance/{id}
func (h *ComplianceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.compliance.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Compliance record not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete compliance record", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// parseNextCheckDate converts an optional client-supplied date string,
// writing a 400 response and returning false when the format is invalid.
func (h *ComplianceHandler) parseNextCheckDate(w http.ResponseWriter, value *string) (*time.Time, bool) {
	if value == nil {
		return nil, true
	}

	t, err := parseDate(*value)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid next_check_date format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}

	return &t, true
}
