package models

import "time"

const (
	MaintenanceStatusOpen   = "open"
	MaintenanceStatusClosed = "closed"
)

// MaintenanceLog mencatat meja yang sedang diperbaiki (ganti laken, lampu,
// dst). Selama log open, meja berstatus maintenance dan tidak bisa dibooking.
type MaintenanceLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StationID   uint       `gorm:"not null;index" json:"station_id"`
	Station     Station    `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID     uint       `gorm:"not null;index" json:"table_id"`
	Table       Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	ReportedBy  uint       `gorm:"not null" json:"reported_by"`
	Reporter    User       `gorm:"foreignKey:ReportedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"type:varchar(15);not null;default:'open'" json:"status"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}
