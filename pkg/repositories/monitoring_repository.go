package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tailingsiq/tailingsiq-engine/pkg/database"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
)

// MonitoringRepository defines the interface for monitoring reading access.
// Readings are append-only: there is no update or delete.
type MonitoringRepository interface {
	GetAll(ctx context.Context) ([]*models.MonitoringReading, error)
	GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.MonitoringReading, error)
	GetByMetricType(ctx context.Context, facilityID uuid.UUID, metricType string) ([]*models.MonitoringReading, error)
	Create(ctx context.Context, reading *models.MonitoringReading) error
	// GetLatestByFacility returns one reading per distinct metric type, each
	// being the newest for that type. Ties on timestamp break to the higher id.
	GetLatestByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.MonitoringReading, error)
}

type monitoringRepository struct {
	db *database.DB
}

// NewMonitoringRepository creates a new monitoring reading repository.
func NewMonitoringRepository(db *database.DB) MonitoringRepository {
	return &monitoringRepository{db: db}
}

const readingColumns = "id, facility_id, metric_type, value, ts, source, status"

func scanReading(row pgx.Row) (*models.MonitoringReading, error) {
	var m models.MonitoringReading
	err := row.Scan(
		&m.ID,
		&m.FacilityID,
		&m.MetricType,
		&m.Value,
		&m.Timestamp,
		&m.Source,
		&m.Status,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAll retrieves all readings, newest first.
func (r *monitoringRepository) GetAll(ctx context.Context) ([]*models.MonitoringReading, error) {
	query := `SELECT ` + readingColumns + ` FROM monitoring_data ORDER BY ts DESC`
	return r.queryReadings(ctx, query)
}

// GetByFacility retrieves a facility's readings, newest first.
func (r *monitoringRepository) GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.MonitoringReading, error) {
	query := `SELECT ` + readingColumns + ` FROM monitoring_data WHERE facility_id = $1 ORDER BY ts DESC`
	return r.queryReadings(ctx, query, facilityID)
}

// GetByMetricType retrieves a facility's readings for one metric, newest first.
func (r *monitoringRepository) GetByMetricType(ctx context.Context, facilityID uuid.UUID, metricType string) ([]*models.MonitoringReading, error) {
	query := `SELECT ` + readingColumns + ` FROM monitoring_data
		WHERE facility_id = $1 AND metric_type = $2
		ORDER BY ts DESC`
	return r.queryReadings(ctx, query, facilityID, metricType)
}

// GetLatestByFacility retrieves the newest reading per metric type.
func (r *monitoringRepository) GetLatestByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.MonitoringReading, error) {
	query := `
		SELECT DISTINCT ON (metric_type) ` + readingColumns + `
		FROM monitoring_data
		WHERE facility_id = $1
		ORDER BY metric_type, ts DESC, id DESC`
	return r.queryReadings(ctx, query, facilityID)
}

func (r *monitoringRepository) queryReadings(ctx context.Context, query string, args ...any) ([]*models.MonitoringReading, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitoring readings: %w", err)
	}
	defer rows.Close()

	var readings []*models.MonitoringReading
	for rows.Next() {
		m, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitoring reading: %w", err)
		}
		readings = append(readings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monitoring readings: %w", err)
	}

	return readings, nil
}

// Create appends a new reading, assigning a generated id and timestamp.
func (r *monitoringRepository) Create(ctx context.Context, reading *models.MonitoringReading) error {
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}

	query := `
		INSERT INTO monitoring_data (id, facility_id, metric_type, value, ts, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		reading.ID,
		reading.FacilityID,
		reading.MetricType,
		reading.Value,
		reading.Timestamp,
		reading.Source,
		reading.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create monitoring reading: %w", err)
	}

	return nil
}

// Ensure monitoringRepository implements MonitoringRepository at compile time.
var _ MonitoringRepository = (*monitoringRepository)(nil)
