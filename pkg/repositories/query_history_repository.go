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

// QueryHistoryRepository provides data access for the query audit log.
// Entries are append-only: there is no update or delete.
type QueryHistoryRepository interface {
	GetAll(ctx context.Context) ([]*models.QueryHistoryEntry, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.QueryHistoryEntry, error)
	Create(ctx context.Context, entry *models.QueryHistoryEntry) error
}

type queryHistoryRepository struct {
	db *database.DB
}

// NewQueryHistoryRepository creates a new query history repository.
func NewQueryHistoryRepository(db *database.DB) QueryHistoryRepository {
	return &queryHistoryRepository{db: db}
}

const queryHistoryColumns = "id, user_id, query, response, ts"

func scanQueryHistoryEntry(row pgx.Row) (*models.QueryHistoryEntry, error) {
	var e models.QueryHistoryEntry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Query,
		&e.Response,
		&e.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetAll retrieves all query history entries, newest first.
func (r *queryHistoryRepository) GetAll(ctx context.Context) ([]*models.QueryHistoryEntry, error) {
	query := `SELECT ` + queryHistoryColumns + ` FROM query_history ORDER BY ts DESC`
	return r.queryEntries(ctx, query)
}

// GetByUser retrieves one user's query history, newest first.
func (r *queryHistoryRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*models.QueryHistoryEntry, error) {
	query := `SELECT ` + queryHistoryColumns + ` FROM query_history WHERE user_id = $1 ORDER BY ts DESC`
	return r.queryEntries(ctx, query, userID)
}

func (r *queryHistoryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.QueryHistoryEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get query history entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.QueryHistoryEntry
	for rows.Next() {
		e, err := scanQueryHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query history entries: %w", err)
	}

	return entries, nil
}

// Create appends a new audit entry, assigning a generated id and timestamp.
func (r *queryHistoryRepository) Create(ctx context.Context, entry *models.QueryHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	query := `
		INSERT INTO query_history (id, user_id, query, response, ts)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Query,
		entry.Response,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create query history entry: %w", err)
	}

	return nil
}

// Ensure queryHistoryRepository implements QueryHistoryRepository at compile time.
var _ QueryHistoryRepository = (*queryHistoryRepository)(nil)
