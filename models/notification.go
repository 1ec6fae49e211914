package models

import "time"

// Notification untuk staff: antrean dapat meja, reservation mendekat, dst.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StationID uint      `gorm:"not null;index" json:"station_id"`
	Station   Station   `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UserID    *uint     `json:"user_id,omitempty"`
	User      *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Title     *string   `gorm:"type:varchar(100)" json:"title,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
