package models

import (
	"time"

	"github.com/google/uuid"
)

// MonitoringReading is a single instrument reading for a facility.
// Readings are append-only: once written they are never updated or deleted
// except through facility removal.
type MonitoringReading struct {
	ID         uuid.UUID `json:"id"`
	FacilityID uuid.UUID `json:"facility_id"`
	MetricType string    `json:"metric_type"` // free-form, e.g. "Piezometer"
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Status     string    `json:"status"` // 'normal', 'warning', 'critical'
}

// Monitoring reading status constants.
const (
	ReadingStatusNormal   = "normal"
	ReadingStatusWarning  = "warning"
	ReadingStatusCritical = "critical"
)

// IsValidReadingStatus checks if the given reading status is valid.
func IsValidReadingStatus(status string) bool {
	switch status {
	case ReadingStatusNormal, ReadingStatusWarning, ReadingStatusCritical:
		return true
	}
	return false
}
