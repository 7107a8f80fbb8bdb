package entities

import (
	"time"

	"gorm.io/gorm"
)

type CommandStatus string

const (
	CommandPending  CommandStatus = "PENDING"
	CommandSent     CommandStatus = "SENT"
	CommandExecuted CommandStatus = "EXECUTED"
	CommandFailed   CommandStatus = "FAILED"
)

// Rank orders statuses along the lifecycle. EXECUTED and FAILED share the
// terminal rank.
func (s CommandStatus) Rank() int {
	switch s {
	case CommandPending:
		return 0
	case CommandSent:
		return 1
	case CommandExecuted, CommandFailed:
		return 2
	default:
		return -1
	}
}

func (s CommandStatus) Terminal() bool { return s.Rank() == 2 }

func (s CommandStatus) Valid() bool { return s.Rank() >= 0 }

// Predecessors lists every stored status a write of s may overwrite.
func (s CommandStatus) Predecessors() []CommandStatus {
	all := []CommandStatus{CommandPending, CommandSent, CommandExecuted, CommandFailed}
	out := make([]CommandStatus, 0, len(all))
	for _, st := range all {
		if st.Rank() <= s.Rank() {
			out = append(out, st)
		}
	}
	return out
}

type Command struct {
	ID            uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomNumber    int           `json:"roomNumber" gorm:"not null;index"`
	PcID          uint          `json:"pcId" gorm:"not null"`
	ComputerName  string        `json:"computerName" gorm:"type:varchar(50);not null;index"`
	TargetIP      string        `json:"targetIp" gorm:"type:varchar(50)"`
	MacAddress    string        `json:"macAddress" gorm:"type:varchar(50)"`
	Action        string        `json:"action" gorm:"type:varchar(32);not null"`
	Parameters    string        `json:"parameters" gorm:"type:text"`
	Status        CommandStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	ResultMessage string        `json:"resultMessage" gorm:"type:varchar(500)"`
	UserEmail     *string       `json:"userEmail" gorm:"type:varchar(255)"`
	CreatedAt     time.Time     `json:"createdAt"`
	SentAt        *time.Time    `json:"sentAt"`
	ExecutedAt    *time.Time    `json:"executedAt"`
}

func (c *Command) BeforeCreate(tx *gorm.DB) (err error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = CommandPending
	}
	return nil
}
