package models

import "time"

// Game adalah jenis permainan yang tersedia di station (8-ball, snooker, dst).
type Game struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StationID   uint      `gorm:"not null;index" json:"station_id"`
	Station     Station   `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
