package repositories

import (
	"context"
	"encoding/json"
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

// DocumentRepository defines the interface for document metadata access.
// The file content itself lives in external blob storage.
type DocumentRepository interface {
	GetAll(ctx context.Context) ([]*models.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	// GetByFacility returns documents whose metadata carries the facility id.
	GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.Document, error)
	// Search matches the query as a substring of title, description or tags.
	Search(ctx context.Context, query string) ([]*models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, id uuid.UUID, params UpdateDocumentParams) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateDocumentParams holds the optional fields for a partial document
// update. Nil fields are left untouched.
type UpdateDocumentParams struct {
	Title       *string
	Description *string
	Metadata    map[string]any
	Tags        *string
}

type documentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *database.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = "id, title, description, file_path, file_type, file_size, uploaded_by, upload_date, updated_at, metadata, tags"

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	var metadataJSON []byte

	err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.FilePath,
		&d.FileType,
		&d.FileSize,
		&d.UploadedBy,
		&d.UploadDate,
		&d.UpdatedAt,
		&metadataJSON,
		&d.Tags,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		var m map[string]any
		if jsonErr := json.Unmarshal(metadataJSON, &m); jsonErr == nil {
			d.Metadata = m
		}
	}

	return &d, nil
}

// GetAll retrieves all documents, newest upload first.
func (r *documentRepository) GetAll(ctx context.Context) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY upload_date DESC`

	return r.queryDocuments(ctx, query)
}

// GetByID retrieves a document by id.
func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	d, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return d, nil
}

// GetByFacility retrieves documents scoped to a facility via their metadata.
func (r *documentRepository) GetByFacility(ctx context.Context, facilityID uuid.UUID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE metadata->>'facility_id' = $1
		ORDER BY upload_date DESC`

	return r.queryDocuments(ctx, query, facilityID.String())
}

// Search matches the query against title, description and tags.
func (r *documentRepository) Search(ctx context.Context, search string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE title ILIKE $1 OR description ILIKE $1 OR tags ILIKE $1
		ORDER BY upload_date DESC`

	return r.queryDocuments(ctx, query, "%"+search+"%")
}

func (r *documentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return documents, nil
}

// Create inserts a new document record. The caller sets UploadedBy from the
// authenticated identity; this method never derives it from request input.
func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}

	now := time.Now()
	document.UploadDate = now
	document.UpdatedAt = now

	metadataJSON, err := marshalJSONBany(document.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO documents (id, title, description, file_path, file_type, file_size, uploaded_by, upload_date, updated_at, metadata, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		document.ID,
		document.Title,
		document.Description,
		document.FilePath,
		document.FileType,
		document.FileSize,
		document.UploadedBy,
		document.UploadDate,
		document.UpdatedAt,
		metadataJSON,
		document.Tags,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// Update applies a partial update, touching only the supplied fields and
// refreshing updated_at. Returns ErrNothingToUpdate without touching storage
// when no fields are supplied.
func (r *documentRepository) Update(ctx context.Context, id uuid.UUID, params UpdateDocumentParams) (*models.Document, error) {
	var sets []string
	var args []any
	argIdx := 1

	if params.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *params.Title)
		argIdx++
	}
	if params.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *params.Description)
		argIdx++
	}
	if params.Metadata != nil {
		metadataJSON, err := marshalJSONBany(params.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		sets = append(sets, fmt.Sprintf("metadata = $%d", argIdx))
		args = append(args, metadataJSON)
		argIdx++
	}
	if params.Tags != nil {
		sets = append(sets, fmt.Sprintf("tags = $%d", argIdx))
		args = append(args, *params.Tags)
		argIdx++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrNothingToUpdate
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $%d RETURNING `+documentColumns,
		strings.Join(sets, ", "), argIdx)

	d, err := scanDocument(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return d, nil
}

// Delete removes a document record. The blob itself is not touched.
func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// marshalJSONBany marshals a metadata map to JSON bytes, returning nil for nil maps.
func marshalJSONBany(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Ensure documentRepository implements DocumentRepository at compile time.
var _ DocumentRepository = (*documentRepository)(nil)
