package models

import "time"

// Bill adalah hasil tutup session. Unique index di session_id memastikan
// stop/auto-release yang terpanggil dua kali tidak pernah menghasilkan dua
// bill untuk satu session.
type Bill struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StationID     uint      `gorm:"not null;index" json:"station_id"`
	Station       Station   `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SessionID     uint      `gorm:"not null;uniqueIndex" json:"session_id"`
	Session       Session   `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	BilledMinutes int       `gorm:"not null" json:"billed_minutes"`
	TableCharge   float64   `gorm:"type:decimal(10,2);not null" json:"table_charge"`
	OrderTotal    float64   `gorm:"type:decimal(10,2);not null" json:"order_total"`
	TotalAmount   float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
