package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tailingsiq/tailingsiq-engine/pkg/ai"
	"github.com/tailingsiq/tailingsiq-engine/pkg/apperrors"
	"github.com/tailingsiq/tailingsiq-engine/pkg/auth"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
	"github.com/tailingsiq/tailingsiq-engine/pkg/repositories"
	"github.com/tailingsiq/tailingsiq-engine/pkg/services"
)

// withClaims attaches validated session claims to the request context, the
// way the auth middleware does after token validation.
func withClaims(r *http.Request, userID uuid.UUID, role string) *http.Request {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Email:            "user@example.com",
		Role:             role,
	}
	ctx := context.WithValue(r.Context(), auth.ClaimsKey, claims)
	return r.WithContext(ctx)
}

// decodeError extracts the message from an {"error": ...} body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	return body["error"]
}

// mockAuthService is a mock implementation of services.AuthService.
type mockAuthService struct {
	user     *models.User
	token    string
	loginErr error
	userErr  error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if m.loginErr != nil {
		return nil, "", m.loginErr
	}
	return m.user, m.token, nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

var _ services.AuthService = (*mockAuthService)(nil)

// mockQueryService is a mock implementation of services.QueryService.
type mockQueryService struct {
	response   *ai.QueryResponse
	entries    []*models.QueryHistoryEntry
	processErr error
	historyErr error

	gotUserID uuid.UUID
	gotQuery  string
}

func (m *mockQueryService) Process(ctx context.Context, userID uuid.UUID, query string) (*ai.QueryResponse, error) {
	m.gotUserID = userID
	m.gotQuery = query
	if m.processErr != nil {
		return nil, m.processErr
	}
	return m.response, nil
}

func (m *mockQueryService) History(ctx context.Context, userID uuid.UUID) ([]*models.QueryHistoryEntry, error) {
	m.gotUserID = userID
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.entries, nil
}

var _ services.QueryService = (*mockQueryService)(nil)

// mockFacilityRepository is an in-memory FacilityRepository.
type mockFacilityRepository struct {
	facilities map[uuid.UUID]*models.Facility
	err        error
}

func newMockFacilityRepository() *mockFacilityRepository {
	return &mockFacilityRepository{facilities: make(map[uuid.UUID]*models.Facility)}
}

func (m *mockFacilityRepository) GetAll(ctx context.Context) ([]*models.Facility, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Facility
	for _, f := range m.facilities {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFacilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	if m.err != nil {
		return nil, m.err
	}
	if f, ok := m.facilities[id]; ok {
		return f, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockFacilityRepository) Create(ctx context.Context, facility *models.Facility) error {
	if m.err != nil {
		return m.err
	}
	facility.ID = uuid.New()
	m.facilities[facility.ID] = facility
	return nil
}

func (m *mockFacilityRepository) Update(ctx context.Context, id uuid.UUID, params repositories.UpdateFacilityParams) (*models.Facility, error) {
	if m.err != nil {
		return nil, m.err
	}
	if params.Name == nil && params.Location == nil && params.Description == nil && params.Status == nil {
		return nil, apperrors.ErrNothingToUpdate
	}
	f, ok := m.facilities[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if params.Name != nil {
		f.Name = *params.Name
	}
	if params.Location != nil {
		f.Location = *params.Location
	}
	if params.Description != nil {
		f.Description = params.Description
	}
	if params.Status != nil {
		f.Status = *params.Status
	}
	return f, nil
}

func (m *mockFacilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.facilities[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.facilities, id)
	return nil
}

var _ repositories.FacilityRepository = (*mockFacilityRepository)(nil)

// mockDocumentRepository is an in-memory DocumentRepository.
type mockDocumentRepository struct {
	documents map[uuid.UUID]*models.Document
	searched  string
	err       error
}

func newMockDocumentRepository() *mockDocumentRepository {
	return &mockDocumentRepository{documents: make(map[uuid.UUID]*models.Document)}
}

func (m *mockDocumentRepository) GetAll(ctx context.Context) ([]*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Document
	for _, d := range m.documents {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.documents[id]; ok {
		return d, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDocumentRepository) GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Document
	for _, d := range m.documents {
		if fid, ok := d.Metadata["facility_id"].(string); ok && fid == facilityID.String() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocumentRepository) Search(ctx context.Context, query string) ([]*models.Document, error) {
	m.searched = query
	if m.err != nil {
		return nil, m.err
	}
	return nil, nil
}

func (m *mockDocumentRepository) Create(ctx context.Context, document *models.Document) error {
	if m.err != nil {
		return m.err
	}
	document.ID = uuid.New()
	m.documents[document.ID] = document
	return nil
}

func (m *mockDocumentRepository) Update(ctx context.Context, id uuid.UUID, params repositories.UpdateDocumentParams) (*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if params.Title == nil && params.Description == nil && params.Metadata == nil && params.Tags == nil {
		return nil, apperrors.ErrNothingToUpdate
	}
	d, ok := m.documents[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if params.Title != nil {
		d.Title = *params.Title
	}
	if params.Description != nil {
		d.Description = params.Description
	}
	if params.Metadata != nil {
		d.Metadata = params.Metadata
	}
	if params.Tags != nil {
		d.Tags = params.Tags
	}
	return d, nil
}

func (m *mockDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.documents[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}

var _ repositories.DocumentRepository = (*mockDocumentRepository)(nil)

// mockMonitoringRepository is an in-memory MonitoringRepository.
type mockMonitoringRepository struct {
	readings []*models.MonitoringReading
	latest   []*models.MonitoringReading
	err      error
}

func (m *mockMonitoringRepository) GetAll(ctx context.Context) ([]*models.MonitoringReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.readings, nil
}

func (m *mockMonitoringRepository) GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.MonitoringReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.MonitoringReading
	for _, r := range m.readings {
		if r.FacilityID == facilityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockMonitoringRepository) GetByMetricType(ctx context.Context, facilityID uuid.UUID, metricType string) ([]*models.MonitoringReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.MonitoringReading
	for _, r := range m.readings {
		if r.FacilityID == facilityID && r.MetricType == metricType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockMonitoringRepository) Create(ctx context.Context, reading *models.MonitoringReading) error {
	if m.err != nil {
		return m.err
	}
	reading.ID = uuid.New()
	m.readings = append(m.readings, reading)
	return nil
}

func (m *mockMonitoringRepository) GetLatestByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.MonitoringReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.latest, nil
}

var _ repositories.MonitoringRepository = (*mockMonitoringRepository)(nil)

// mockComplianceRepository is an in-memory ComplianceRepository.
type mockComplianceRepository struct {
	records map[uuid.UUID]*models.ComplianceRecord
	summary *models.ComplianceStatusSummary
	err     error
}

func newMockComplianceRepository() *mockComplianceRepository {
	return &mockComplianceRepository{records: make(map[uuid.UUID]*models.ComplianceRecord)}
}

func (m *mockComplianceRepository) GetAll(ctx context.Context) ([]*models.ComplianceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.ComplianceRecord
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockComplianceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if rec, ok := m.records[id]; ok {
		return rec, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockComplianceRepository) GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.ComplianceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.ComplianceRecord
	for _, rec := range m.records {
		if rec.FacilityID == facilityID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockComplianceRepository) Create(ctx context.Context, record *models.ComplianceRecord) error {
	if m.err != nil {
		return m.err
	}
	record.ID = uuid.New()
	m.records[record.ID] = record
	return nil
}

func (m *mockComplianceRepository) Update(ctx context.Context, id uuid.UUID, params repositories.UpdateComplianceParams) (*models.ComplianceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if params.Status == nil && params.NextCheckDate == nil && params.Notes == nil {
		return nil, apperrors.ErrNothingToUpdate
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if params.Status != nil {
		rec.Status = *params.Status
	}
	if params.NextCheckDate != nil {
		rec.NextCheckDate = params.NextCheckDate
	}
	if params.Notes != nil {
		rec.Notes = params.Notes
	}
	return rec, nil
}

func (m *mockComplianceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.records[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockComplianceRepository) GetComplianceStatus(ctx context.Context, facilityID uuid.UUID) (*models.ComplianceStatusSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &models.ComplianceStatusSummary{}, nil
}

var _ repositories.ComplianceRepository = (*mockComplianceRepository)(nil)
