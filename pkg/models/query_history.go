package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryHistoryEntry is an audit record of a natural-language query and the
// serialized response it produced. Entries are append-only.
type QueryHistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}
