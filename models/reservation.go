package models

import "time"

const (
	ReservationStatusPending   = "pending"
	ReservationStatusActive    = "active"
	ReservationStatusCancelled = "cancelled"
)

// Reservation memblok window waktu di satu meja tanpa langsung menduduki.
// Cancel tidak membebaskan resource apa pun karena reservation memang tidak
// pernah memegang meja.
type Reservation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StationID    uint      `gorm:"not null;index" json:"station_id"`
	Station      Station   `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID      uint      `gorm:"not null;index" json:"table_id"`
	Table        Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	CustomerName string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	Phone        string    `gorm:"type:varchar(30)" json:"phone"`
	FromTime     time.Time `gorm:"not null" json:"from_time"`
	ToTime       time.Time `gorm:"not null" json:"to_time"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
