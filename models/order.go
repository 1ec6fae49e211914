package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusBilled    = "billed"
	OrderStatusCancelled = "cancelled"
)

// Order adalah cart pendamping (makanan/minuman) yang menempel ke session
// atau queue entry. Satu order pending dibuat saat session start / enqueue
// dengan cart; jalur auto-assignment me-reuse order milik queue entry supaya
// tidak dobel.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	StationID    uint        `gorm:"not null;index" json:"station_id"`
	Station      Station     `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SessionID    *uint       `gorm:"index" json:"session_id,omitempty"`
	QueueEntryID *uint       `gorm:"index" json:"queue_entry_id,omitempty"`
	Status       string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount  float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	OrderItems   []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}
