package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file tracked by the engine. The file content itself
// lives in external blob storage reachable via FilePath; this record carries
// the descriptive metadata. UploadedBy always comes from the authenticated
// session, never from request input.
type Document struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	FilePath    string         `json:"file_path"`
	FileType    string         `json:"file_type"`
	FileSize    int64          `json:"file_size"`
	UploadedBy  uuid.UUID      `json:"uploaded_by"`
	UploadDate  time.Time      `json:"upload_date"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tags        *string        `json:"tags,omitempty"`
}
