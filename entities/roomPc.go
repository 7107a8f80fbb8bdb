package entities

// RoomPC is one computer of a room. PcID is only unique inside its room.
type RoomPC struct {
	RoomNumber int    `json:"roomNumber" yaml:"-" gorm:"primaryKey;autoIncrement:false"`
	PcID       uint   `json:"pcId" yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	Name       string `json:"name" yaml:"name" gorm:"type:varchar(50);not null"`
	IP         string `json:"ip" yaml:"ip" gorm:"type:varchar(50);index"`
	MAC        string `json:"mac" yaml:"mac" gorm:"type:varchar(50)"`
}

func (RoomPC) TableName() string { return "room_pcs" }
