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

// FacilityRepository defines the interface for facility data access.
type FacilityRepository interface {
	GetAll(ctx context.Context) ([]*models.Facility, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Facility, error)
	Create(ctx context.Context, facility *models.Facility) error
	Update(ctx context.Context, id uuid.UUID, params UpdateFacilityParams) (*models.Facility, error)
	// Delete removes a facility. Monitoring readings and compliance records
	// for the facility cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateFacilityParams holds the optional fields for a partial facility
// update. Nil fields are left untouched.
type UpdateFacilityParams struct {
	Name        *string
	Location    *string
	Description *string
	Status      *string
}

type facilityRepository struct {
	db *database.DB
}

// NewFacilityRepository creates a new facility repository.
func NewFacilityRepository(db *database.DB) FacilityRepository {
	return &facilityRepository{db: db}
}

const facilityColumns = "id, name, location, description, status, created_at, updated_at"

func scanFacility(row pgx.Row) (*models.Facility, error) {
	var f models.Facility
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Location,
		&f.Description,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetAll retrieves all facilities.
func (r *facilityRepository) GetAll(ctx context.Context) ([]*models.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get facilities: %w", err)
	}
	defer rows.Close()

	var facilities []*models.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		facilities = append(facilities, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating facilities: %w", err)
	}

	return facilities, nil
}

// GetByID retrieves a facility by id.
func (r *facilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Facility, error) {
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`

	f, err := scanFacility(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}

	return f, nil
}

// Create inserts a new facility, assigning a generated id and timestamps.
func (r *facilityRepository) Create(ctx context.Context, facility *models.Facility) error {
	if facility.ID == uuid.Nil {
		facility.ID = uuid.New()
	}

	now := time.Now()
	facility.CreatedAt = now
	facility.UpdatedAt = now

	query := `
		INSERT INTO facilities (id, name, location, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		facility.ID,
		facility.Name,
		facility.Location,
		facility.Description,
		facility.Status,
		facility.CreatedAt,
		facility.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create facility: %w", err)
	}

	return nil
}

// Update applies a partial update, touching only the supplied fields and
// refreshing updated_at. Returns ErrNothingToUpdate without touching storage
// when no fields are supplied.
func (r *facilityRepository) Update(ctx context.Context, id uuid.UUID, params UpdateFacilityParams) (*models.Facility, error) {
	var sets []string
	var args []any
	argIdx := 1

	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *params.Name)
		argIdx++
	}
	if params.Location != nil {
		sets = append(sets, fmt.Sprintf("location = $%d", argIdx))
		args = append(args, *params.Location)
		argIdx++
	}
	if params.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *params.Description)
		argIdx++
	}
	if params.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNothingToUpdate
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE facilities SET %s WHERE id = $%d RETURNING `+facilityColumns,
		strings.Join(sets, ", "), argIdx)

	f, err := scanFacility(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update facility: %w", err)
	}

	return f, nil
}

// Delete removes a facility.
func (r *facilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure facilityRepository implements FacilityRepository at compile time.
var _ FacilityRepository = (*facilityRepository)(nil)
