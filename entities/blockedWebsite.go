package entities

import "time"

type BlockedWebsite struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	URL       string    `json:"url" gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
}
