package models

import "time"

// Status meja. Status ini disimpan (bukan derived) dan hanya boleh dimutasi
// oleh session/queue/maintenance flow; reconciler memperbaiki drift.
const (
	TableStatusAvailable   = "available"
	TableStatusReserved    = "reserved"
	TableStatusOccupied    = "occupied"
	TableStatusMaintenance = "maintenance"
)

type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StationID    uint      `gorm:"not null;index" json:"station_id"`
	Station      Station   `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	GameID       uint      `gorm:"not null;index" json:"game_id"`
	Game         Game      `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"game"`
	TableNumber  string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Status       string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	HourlyRate   float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"hourly_rate"`
	PerFrameRate float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"per_frame_rate"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// ValidTableStatus memvalidasi string status dari request body.
func ValidTableStatus(s string) bool {
	switch s {
	case TableStatusAvailable, TableStatusReserved, TableStatusOccupied, TableStatusMaintenance:
		return true
	}
	return false
}
