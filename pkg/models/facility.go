package models

import (
	"time"

	"github.com/google/uuid"
)

// Facility is a tailings storage facility under management.
type Facility struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"` // 'active', 'inactive', 'maintenance'
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Facility status constants.
const (
	FacilityStatusActive      = "active"
	FacilityStatusInactive    = "inactive"
	FacilityStatusMaintenance = "maintenance"
)

// IsValidFacilityStatus checks if the given facility status is valid.
func IsValidFacilityStatus(status string) bool {
	switch status {
	case FacilityStatusActive, FacilityStatusInactive, FacilityStatusMaintenance:
		return true
	}
	return false
}
