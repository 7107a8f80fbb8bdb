package entities

import (
	"strings"
	"time"
)

type ComputerState string

const (
	ComputerOnline  ComputerState = "ONLINE"
	ComputerOffline ComputerState = "OFFLINE"
	ComputerUnknown ComputerState = "UNKNOWN"
)

// ParseComputerState maps an agent status string case-insensitively.
// Anything unrecognised becomes UNKNOWN.
func ParseComputerState(s string) ComputerState {
	switch ComputerState(strings.ToUpper(strings.TrimSpace(s))) {
	case ComputerOnline:
		return ComputerOnline
	case ComputerOffline:
		return ComputerOffline
	default:
		return ComputerUnknown
	}
}

// ComputerStatus is the live view of one PC, keyed by its IP address.
type ComputerStatus struct {
	IPAddress  string        `json:"ipAddress" gorm:"primaryKey;type:varchar(50)"`
	RoomNumber int           `json:"roomNumber" gorm:"index"`
	PcID       uint          `json:"pcId"`
	PcName     string        `json:"pcName" gorm:"type:varchar(50)"`
	MacAddress string        `json:"macAddress" gorm:"type:varchar(50)"`
	Status     ComputerState `json:"status" gorm:"type:varchar(16);not null;index"`
	LastSeen   time.Time     `json:"lastSeen"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
