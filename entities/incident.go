package entities

import (
	"strings"
	"time"
)

type IncidentStatus string

const (
	IncidentPending   IncidentStatus = "PENDING"
	IncidentCompleted IncidentStatus = "COMPLETED"
)

func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	switch st := IncidentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case IncidentPending, IncidentCompleted:
		return st, true
	}
	return "", false
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(strings.ToUpper(strings.TrimSpace(s))); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, true
	}
	return "", false
}

// Incident is a problem reported against the lab. CompletedAt is set once,
// when the incident moves to COMPLETED.
type Incident struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Description string         `json:"description" gorm:"type:varchar(2000);not null"`
	Severity    Severity       `json:"severity" gorm:"type:varchar(16);not null"`
	Status      IncidentStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index"`
	CompletedAt *time.Time     `json:"completedAt,omitempty" gorm:"index"`
}
