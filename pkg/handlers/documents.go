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

// CreateDocumentRequest is the body for POST /api/documents.
// The uploader is taken from the authenticated session, never from the body.
type CreateDocumentRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	FilePath    string         `json:"file_path"`
	FileType    string         `json:"file_type"`
	FileSize    int64          `json:"file_size"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tags        *string        `json:"tags,omitempty"`
}

// UpdateDocumentRequest is the body for PUT /api/documents/{id}.
// Omitted fields retain their prior values.
type UpdateDocumentRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tags        *string        `json:"tags,omitempty"`
}

// DocumentHandler handles document HTTP requests.
type DocumentHandler struct {
	documents repositories.DocumentRepository
	logger    *zap.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(documents repositories.DocumentRepository, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

// RegisterRoutes registers the document handler's routes on the given mux.
func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/documents", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/documents/search", authMiddleware.RequireAuth(h.Search))
	mux.HandleFunc("POST /api/documents",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Create))
	mux.HandleFunc("GET /api/documents/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/documents/{id}",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Update))
	mux.HandleFunc("DELETE /api/documents/{id}",
		authMiddleware.RequireRole(models.RoleAdmin, models.RoleManager)(h.Delete))
	mux.HandleFunc("GET /api/facilities/{id}/documents", authMiddleware.RequireAuth(h.ListByFacility))
}

// List handles GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	documents, err := h.documents.GetAll(r.Context())
	h.writeDocuments(w, documents, err)
}

// ListByFacility handles GET /api/facilities/{id}/documents
func (h *DocumentHandler) ListByFacility(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	documents, err := h.documents.GetByFacility(r.Context(), id)
	h.writeDocuments(w, documents, err)
}

// Search handles GET /api/documents/search?q=
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "Search query is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	documents, err := h.documents.Search(r.Context(), q)
	h.writeDocuments(w, documents, err)
}

func (h *DocumentHandler) writeDocuments(w http.ResponseWriter, documents []*models.Document, err error) {
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if documents == nil {
		documents = []*models.Document{}
	}

	if err := WriteJSON(w, http.StatusOK, documents); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Get handles GET /api/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	document, err := h.documents.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Document not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get document", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, document); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Create handles POST /api/documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.Title == "" || req.FilePath == "" || req.FileType == "" || req.FileSize == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "Title, file_path, file_type, and file_size are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Attribution comes from the session, never the request body.
	uploadedBy, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "Not authenticated"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	document := &models.Document{
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		UploadedBy:  uploadedBy,
		Metadata:    req.Metadata,
		Tags:        req.Tags,
	}

	if err := h.documents.Create(r.Context(), document); err != nil {
		h.logger.Error("Failed to create document", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, document); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Update handles PUT /api/documents/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	document, err := h.documents.Update(r.Context(), id, repositories.UpdateDocumentParams{
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
		Tags:        req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNothingToUpdate):
			if err := WriteJSON(w, http.StatusOK, map[string]string{"message": "Nothing to update"}); err != nil {
				h.logger.Error("Failed to encode response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "Document not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			h.logger.Error("Failed to update document", zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, document); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Delete handles DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.documents.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Document not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete document", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Internal server error"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
