package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceRecord is one assessment of a regulatory requirement for a
// facility. LastChecked is refreshed on every successful update.
type ComplianceRecord struct {
	ID            uuid.UUID  `json:"id"`
	FacilityID    uuid.UUID  `json:"facility_id"`
	RequirementID string     `json:"requirement_id"`
	Status        string     `json:"status"` // 'compliant', 'non-compliant', 'pending'
	LastChecked   time.Time  `json:"last_checked"`
	NextCheckDate *time.Time `json:"next_check_date,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// Compliance status constants.
const (
	ComplianceStatusCompliant    = "compliant"
	ComplianceStatusNonCompliant = "non-compliant"
	ComplianceStatusPending      = "pending"
)

// IsValidComplianceStatus checks if the given compliance status is valid.
func IsValidComplianceStatus(status string) bool {
	switch status {
	case ComplianceStatusCompliant, ComplianceStatusNonCompliant, ComplianceStatusPending:
		return true
	}
	return false
}

// ComplianceStatusSummary aggregates a facility's compliance records by status.
type ComplianceStatusSummary struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	Pending      int `json:"pending"`
}
