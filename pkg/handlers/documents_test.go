package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
)

func TestDocumentHandler_Create_AttributionFromSession(t *testing.T) {
	repo := newMockDocumentRepository()
	handler := NewDocumentHandler(repo, zap.NewNop())

	sessionUser := uuid.New()
	bodyUser := uuid.New()

	// A spoofed uploaded_by in the body must be ignored
	raw := map[string]any{
		"title":       "Dam Safety Review 2025",
		"file_path":   "/uploads/dam-safety-review-2025.pdf",
		"file_type":   "application/pdf",
		"file_size":   204800,
		"uploaded_by": bodyUser.String(),
	}
	body, _ := json.Marshal(raw)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(body))
	req = withClaims(req, sessionUser, models.RoleManager)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.UploadedBy != sessionUser {
		t.Errorf("expected uploader %v from session, got %v", sessionUser, got.UploadedBy)
	}
}

func TestDocumentHandler_Create_MissingFields(t *testing.T) {
	handler := NewDocumentHandler(newMockDocumentRepository(), zap.NewNop())

	tests := []struct {
		name string
		body CreateDocumentRequest
	}{
		{"missing title", CreateDocumentRequest{FilePath: "/f", FileType: "pdf", FileSize: 1}},
		{"missing file_path", CreateDocumentRequest{Title: "t", FileType: "pdf", FileSize: 1}},
		{"missing file_type", CreateDocumentRequest{Title: "t", FilePath: "/f", FileSize: 1}},
		{"missing file_size", CreateDocumentRequest{Title: "t", FilePath: "/f", FileType: "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(body))
			req = withClaims(req, uuid.New(), models.RoleManager)
			rec := httptest.NewRecorder()
			handler.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
			if msg := decodeError(t, rec); msg != "Title, file_path, file_type, and file_size are required" {
				t.Errorf("expected required-fields error, got %q", msg)
			}
		})
	}
}

func TestDocumentHandler_Create_NoSession(t *testing.T) {
	handler := NewDocumentHandler(newMockDocumentRepository(), zap.NewNop())

	body, _ := json.Marshal(CreateDocumentRequest{
		Title: "t", FilePath: "/f", FileType: "pdf", FileSize: 1,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without session claims, got %d", rec.Code)
	}
}

func TestDocumentHandler_Search_RequiresQuery(t *testing.T) {
	handler := NewDocumentHandler(newMockDocumentRepository(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/search", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestDocumentHandler_Search_PassesQuery(t *testing.T) {
	repo := newMockDocumentRepository()
	handler := NewDocumentHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/search?q=safety", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if repo.searched != "safety" {
		t.Errorf("expected search term 'safety' passed to repository, got %q", repo.searched)
	}
	// No matches is [], never null
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("expected empty array body, got %s", body)
	}
}

func TestDocumentHandler_ListByFacility(t *testing.T) {
	repo := newMockDocumentRepository()
	facilityID := uuid.New()
	doc := &models.Document{
		ID:       uuid.New(),
		Title:    "Facility Doc",
		Metadata: map[string]any{"facility_id": facilityID.String()},
	}
	repo.documents[doc.ID] = doc
	other := &models.Document{ID: uuid.New(), Title: "Unrelated"}
	repo.documents[other.ID] = other

	handler := NewDocumentHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/facilities/"+facilityID.String()+"/documents", nil)
	req.SetPathValue("id", facilityID.String())
	rec := httptest.NewRecorder()
	handler.ListByFacility(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var docs []*models.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &docs); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Facility Doc" {
		t.Errorf("expected only the facility's document, got %d docs", len(docs))
	}
}

func TestDocumentHandler_Update_NothingToUpdate(t *testing.T) {
	repo := newMockDocumentRepository()
	doc := &models.Document{ID: uuid.New(), Title: "Doc"}
	repo.documents[doc.ID] = doc
	handler := NewDocumentHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/documents/"+doc.ID.String(), bytes.NewReader([]byte("{}")))
	req.SetPathValue("id", doc.ID.String())
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for no-op update, got %d", rec.Code)
	}
}

func TestDocumentHandler_Delete_NotFound(t *testing.T) {
	handler := NewDocumentHandler(newMockDocumentRepository(), zap.NewNop())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Document not found" {
		t.Errorf("expected error 'Document not found', got %q", msg)
	}
}
