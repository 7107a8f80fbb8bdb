package entities

import "time"

// InstallableApp is a catalogue entry; Command is the install line the agent runs.
type InstallableApp struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Command     string    `json:"command" gorm:"type:varchar(1000);not null"`
	Description string    `json:"description" gorm:"type:varchar(1000)"`
	CreatedAt   time.Time `json:"createdAt"`
}
