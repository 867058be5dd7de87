package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tailingsiq/tailingsiq-engine/pkg/apperrors"
	"github.com/tailingsiq/tailingsiq-engine/pkg/database"
	"github.com/tailingsiq/tailingsiq-engine/pkg/models"
)

// ComplianceRepository defines the interface for compliance record access.
type ComplianceRepository interface {
	GetAll(ctx context.Context) ([]*models.ComplianceRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceRecord, error)
	GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.ComplianceRecord, error)
	Create(ctx context.Context, record *models.ComplianceRecord) error
	Update(ctx context.Context, id uuid.UUID, params UpdateComplianceParams) (*models.ComplianceRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// GetComplianceStatus aggregates the facility's records by status.
	GetComplianceStatus(ctx context.Context, facilityID uuid.UUID) (*models.ComplianceStatusSummary, error)
}

// UpdateComplianceParams holds the optional fields for a partial compliance
// record update. Nil fields are left untouched.
type UpdateComplianceParams struct {
	Status        *string
	NextCheckDate *time.Time
	Notes         *string
}

type complianceRepository struct {
	db *database.DB
}

// NewComplianceRepository creates a new compliance record repository.
func NewComplianceRepository(db *database.DB) ComplianceRepository {
	return &complianceRepository{db: db}
}

const complianceColumns = "id, facility_id, requirement_id, status, last_checked, next_check_date, notes"

func scanComplianceRecord(row pgx.Row) (*models.ComplianceRecord, error) {
	var c models.ComplianceRecord
	err := row.Scan(
		&c.ID,
		&c.FacilityID,
		&c.RequirementID,
		&c.Status,
		&c.LastChecked,
		&c.NextCheckDate,
		&c.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAll retrieves all compliance records, most recently checked first.
func (r *complianceRepository) GetAll(ctx context.Context) ([]*models.ComplianceRecord, error) {
	query := `SELECT ` + complianceColumns + ` FROM compliance_records ORDER BY last_checked DESC`
	return r.queryRecords(ctx, query)
}

// GetByFacility retrieves a facility's compliance records, most recently
// checked first.
func (r *complianceRepository) GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.ComplianceRecord, error) {
	query := `SELECT ` + complianceColumns + ` FROM compliance_records
		WHERE facility_id = $1
		ORDER BY last_checked DESC`
	return r.queryRecords(ctx, query, facilityID)
}

func (r *complianceRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.ComplianceRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get compliance records: %w", err)
	}
	defer rows.Close()

	var records []*models.ComplianceRecord
	for rows.Next() {
		c, err := scanComplianceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance record: %w", err)
		}
		records = append(records, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compliance records: %w", err)
	}

	return records, nil
}

// GetByID retrieves a compliance record by id.
func (r *complianceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceRecord, error) {
	query := `SELECT ` + complianceColumns + ` FROM compliance_records WHERE id = $1`

	c, err := scanComplianceRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get compliance record: %w", err)
	}

	return c, nil
}

// Create inserts a new compliance record with last_checked set to now.
func (r *complianceRepository) Create(ctx context.Context, record *models.ComplianceRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.LastChecked = time.Now()

	query := `
		INSERT INTO compliance_records (id, facility_id, requirement_id, status, last_checked, next_check_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.FacilityID,
		record.RequirementID,
		record.Status,
		record.LastChecked,
		record.NextCheckDate,
		record.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create compliance record: %w", err)
	}

	return nil
}

// Update applies a partial update, touching only the supplied fields and
// refreshing last_checked. Returns ErrNothingToUpdate without touching
// storage when no fields are supplied.
func (r *complianceRepository) Update(ctx context.Context, id uuid.UUID, params UpdateComplianceParams) (*models.ComplianceRecord, error) {
	var sets []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.NextCheckDate != nil {
		sets = append(sets, fmt.Sprintf("next_check_date = $%d", argIdx))
		args = append(args, *params.NextCheckDate)
		argIdx++
	}
	if params.Notes != nil {
		sets = append(sets, fmt.Sprintf("notes = $%d", argIdx))
		args = append(args, *params.Notes)
		argIdx++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNothingToUpdate
	}

	sets = append(sets, fmt.Sprintf("last_checked = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE compliance_records SET %s WHERE id = $%d RETURNING `+complianceColumns,
		strings.Join(sets, ", "), argIdx)

	c, err := scanComplianceRecord(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update compliance record: %w", err)
	}

	return c, nil
}

// Delete removes a compliance record.
func (r *complianceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM compliance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete compliance record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// GetComplianceStatus aggregates a facility's compliance records by status.
func (r *complianceRepository) GetComplianceStatus(ctx context.Context, facilityID uuid.UUID) (*models.ComplianceStatusSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'compliant') AS compliant,
			COUNT(*) FILTER (WHERE status = 'non-compliant') AS non_compliant,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending
		FROM compliance_records
		WHERE facility_id = $1`

	var summary models.ComplianceStatusSummary
	err := r.db.QueryRow(ctx, query, facilityID).Scan(
		&summary.Total,
		&summary.Compliant,
		&summary.NonCompliant,
		&summary.Pending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate compliance status: %w", err)
	}

	return &summary, nil
}

// Ensure complianceRepository implements ComplianceRepository at compile time.
var _ ComplianceRepository = (*complianceRepository)(nil)
