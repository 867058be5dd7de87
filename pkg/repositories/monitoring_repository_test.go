//go:build integration

package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
)

func (tc *repoTestContext) createReading(repo MonitoringRepository, facilityID uuid.UUID, metricType string, value float64, ts time.Time) *models.MonitoringReading {
	tc.t.Helper()
	reading := &models.MonitoringReading{
		FacilityID: facilityID,
		MetricType: metricType,
		Value:      value,
		Timestamp:  ts,
		Source:     "test-sensor",
		Status:     models.ReadingStatusNormal,
	}
	if err := repo.Create(tc.ctx, reading); err != nil {
		tc.t.Fatalf("failed to create reading: %v", err)
	}
	return reading
}

func TestMonitoringRepository_Create_AssignsTimestamp(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewMonitoringRepository(tc.db.DB)
	facility := tc.createTestFacility("North Dam")

	reading := &models.MonitoringReading{
		FacilityID: facility.ID,
		MetricType: "Piezometer",
		Value:      12.3,
		Source:     "PZ-001",
		Status:     models.ReadingStatusNormal,
	}
	if err := repo.Create(tc.ctx, reading); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if reading.ID == uuid.Nil {
		t.Error("expected assigned reading id")
	}
	if reading.Timestamp.IsZero() {
		t.Error("expected assigned timestamp")
	}
}

func TestMonitoringRepository_GetByMetricType(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewMonitoringRepository(tc.db.DB)
	facility := tc.createTestFacility("North Dam")

	now := time.Now()
	tc.createReading(repo, facility.ID, "Piezometer", 12.3, now.Add(-2*time.Hour))
	tc.createReading(repo, facility.ID, "Piezometer", 14.1, now.Add(-time.Hour))
	tc.createReading(repo, facility.ID, "Rainfall", 44, now)

	readings, err := repo.GetByMetricType(tc.ctx, facility.ID, "Piezometer")
	if err != nil {
		t.Fatalf("GetByMetricType failed: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 Piezometer readings, got %d", len(readings))
	}
	// Newest first
	if readings[0].Value != 14.1 {
		t.Errorf("expected newest reading first, got value %v", readings[0].Value)
	}
}

func TestMonitoringRepository_GetLatestByFacility(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewMonitoringRepository(tc.db.DB)
	facility := tc.createTestFacility("North Dam")

	now := time.Now()
	tc.createReading(repo, facility.ID, "Piezometer", 12.3, now.Add(-2*time.Hour))
	tc.createReading(repo, facility.ID, "Piezometer", 18.7, now.Add(-time.Minute))
	tc.createReading(repo, facility.ID, "Rainfall", 30, now.Add(-time.Hour))
	tc.createReading(repo, facility.ID, "Rainfall", 78, now.Add(-time.Minute))
	tc.createReading(repo, facility.ID, "Displacement", 3.2, now.Add(-3*time.Hour))

	latest, err := repo.GetLatestByFacility(tc.ctx, facility.ID)
	if err != nil {
		t.Fatalf("GetLatestByFacility failed: %v", err)
	}

	if len(latest) != 3 {
		t.Fatalf("expected one reading per metric type, got %d", len(latest))
	}

	byMetric := make(map[string]float64)
	for _, r := range latest {
		if _, dup := byMetric[r.MetricType]; dup {
			t.Errorf("duplicate metric type %q in latest results", r.MetricType)
		}
		byMetric[r.MetricType] = r.Value
	}
	if byMetric["Piezometer"] != 18.7 {
		t.Errorf("expected newest Piezometer value 18.7, got %v", byMetric["Piezometer"])
	}
	if byMetric["Rainfall"] != 78 {
		t.Errorf("expected newest Rainfall value 78, got %v", byMetric["Rainfall"])
	}
	if byMetric["Displacement"] != 3.2 {
		t.Errorf("expected Displacement value 3.2, got %v", byMetric["Displacement"])
	}
}

// Two readings sharing an identical timestamp resolve deterministically to
// the one with the greater id.
func TestMonitoringRepository_GetLatestByFacility_TimestampTie(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewMonitoringRepository(tc.db.DB)
	facility := tc.createTestFacility("North Dam")

	ts := time.Now().Truncate(time.Second)

	low := &models.MonitoringReading{
		ID:         uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		FacilityID: facility.ID,
		MetricType: "Piezometer",
		Value:      10,
		Timestamp:  ts,
		Source:     "PZ-001",
		Status:     models.ReadingStatusNormal,
	}
	high := &models.MonitoringReading{
		ID:         uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"),
		FacilityID: facility.ID,
		MetricType: "Piezometer",
		Value:      20,
		Timestamp:  ts,
		Source:     "PZ-002",
		Status:     models.ReadingStatusNormal,
	}
	if err := repo.Create(tc.ctx, low); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(tc.ctx, high); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	latest, err := repo.GetLatestByFacility(tc.ctx, facility.ID)
	if err != nil {
		t.Fatalf("GetLatestByFacility failed: %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(latest))
	}
	if latest[0].ID != high.ID {
		t.Errorf("expected tie to break to greater id, got %v", latest[0].ID)
	}
}

func TestMonitoringRepository_GetByFacility_ScopedToFacility(t *testing.T) {
	tc := setupRepoTest(t)
	repo := NewMonitoringRepository(tc.db.DB)
	north := tc.createTestFacility("North Dam")
	south := tc.createTestFacility("South Dam")

	now := time.Now()
	tc.createReading(repo, north.ID, "Piezometer", 12.3, now)
	tc.createReading(repo, south.ID, "Piezometer", 99, now)

	readings, err := repo.GetByFacility(tc.ctx, north.ID)
	if err != nil {
		t.Fatalf("GetByFacility failed: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading for north, got %d", len(readings))
	}
	if readings[0].FacilityID != north.ID {
		t.Errorf("expected north facility reading, got %v", readings[0].FacilityID)
	}
}
