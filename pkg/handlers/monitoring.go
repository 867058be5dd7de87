package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/auth"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
)

// CreateReadingRequest is the body for POST /api/monitoring.
// Value is a pointer so an explicit zero reading is distinguishable from an
// omitted field.
type CreateReadingRequest struct {
	FacilityID string   `json:"facility_id"`
	MetricType string   `json:"metric_type"`
	Value      *float64 `json:"value"`
	Source     string   `json:"source"`
	Status     string   `json:"status"`
}

// MonitoringHandler handles monitoring reading HTTP requests.
type MonitoringHandler struct {
	readings repositories.MonitoringRepository
	logger   *zap.Logger
}

// NewMonitoringHandler creates a new monitoring handler.
func NewMonitoringHandler(readings repositories.MonitoringRepository, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		readings: readings,
		logger:   logger,
	}
}

// RegisterRoutes registers the monitoring handler's routes on the given mux.
func (h *MonitoringHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/monitoring", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/monitoring",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Create))
	mux.HandleFunc("GET /api/facilities/{id}/monitoring", authMiddleware.RequireAuth(h.ListByFacility))
	mux.HandleFunc("GET /api/facilities/{id}/monitoring/latest", authMiddleware.RequireAuth(h.LatestByFacility))
}

// List handles GET /api/monitoring
func (h *MonitoringHandler) List(w http.ResponseWriter, r *http.Request) {
	readings, err := h.readings.GetAll(r.Context())
	h.writeReadings(w, readings, err)
}

// ListByFacility handles GET /api/facilities/{id}/monitoring
// An optional metric_type query parameter narrows the result to one metric.
func (h *MonitoringHandler) ListByFacility(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	var readings []*models.MonitoringReading
	var err error

	if metricType := r.URL.Query().Get("metric_type"); metricType != "" {
		readings, err = h.readings.GetByMetricType(r.Context(), id, metricType)
	} else {
		readings, err = h.readings.GetByFacility(r.Context(), id)
	}

	h.writeReadings(w, readings, err)
}

// LatestByFacility handles GET /api/facilities/{id}/monitoring/latest
// Returns one reading per distinct metric type, each the newest for its type.
func (h *MonitoringHandler) LatestByFacility(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	readings, err := h.readings.GetLatestByFacility(r.Context(), id)
	h.writeReadings(w, readings, err)
}

func (h *MonitoringHandler) writeReadings(w http.ResponseWriter, readings []*models.MonitoringReading, err error) {
	if err != nil {
		h.logger.Error("Failed to list monitoring readings", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if readings == nil {
		readings = []*models.MonitoringReading{}
	}

	if err := WriteJSON(w, http.StatusOK, readings); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Create handles POST /api/monitoring
func (h *MonitoringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.FacilityID == "" || req.MetricType == "" || req.Value == nil || req.Source == "" || req.Status == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Facility ID, metric type, value, source, and status are required"); err != nil {
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

	if !models.IsValidReadingStatus(req.Status) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid status"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	reading := &models.MonitoringReading{
		FacilityID: facilityID,
		MetricType: req.MetricType,
		Value:      *req.Value,
		Source:     req.Source,
		Status:     req.Status,
	}

	if err := h.readings.Create(r.Context(), reading); err != nil {
		h.logger.Error("Failed to create monitoring reading", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, reading); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
