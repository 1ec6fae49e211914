package models

import "time"

const (
	QueueStatusWaiting   = "waiting"
	QueueStatusSeated    = "seated"
	QueueStatusServed    = "served"
	QueueStatusCancelled = "cancelled"
)

// QueueEntry adalah antrean walk-in yang belum kebagian meja. Code dipakai
// customer untuk mengecek posisinya tanpa tahu id internal. SeatedTableKey
// mengikuti pola active_table_key di Session: berisi table id selama seated,
// NULL di status lain, dengan unique index sebagai penjaga maksimal satu
// entry seated per meja.
type QueueEntry struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	StationID        uint    `gorm:"not null;index" json:"station_id"`
	Station          Station `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Code             string  `gorm:"type:varchar(36);not null;uniqueIndex" json:"code"`
	CustomerName     string  `gorm:"type:varchar(100);not null" json:"customer_name"`
	GameID           uint    `gorm:"not null;index" json:"game_id"`
	Game             Game    `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"game"`
	PreferredTableID *uint   `json:"preferred_table_id,omitempty"`
	Status           string  `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`
	SeatedTableKey   *uint   `gorm:"uniqueIndex:idx_queue_seated_table" json:"-"`

	BookingType     BookingType `gorm:"type:varchar(10);not null" json:"booking_type"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	TargetTime      *string     `gorm:"type:varchar(5)" json:"target_time,omitempty"`
	FrameCount      *int        `json:"frame_count,omitempty"`

	EstimatedWaitMinutes int `gorm:"not null;default:0" json:"estimated_wait_minutes"`

	// TableID terisi saat entry di-assign (seated) atau langsung di-seat
	// lewat pembagian meja yang baru bebas; SessionID terisi pada jalur
	// auto-assignment yang langsung membuka session.
	TableID   *uint `json:"table_id,omitempty"`
	SessionID *uint `json:"session_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Intent merakit ulang BookingIntent; default 60 menit kalau entry tidak
// menyebut durasi sama sekali.
func (q *QueueEntry) Intent() BookingIntent {
	bi := BookingIntent{Type: q.BookingType}
	if q.DurationMinutes != nil {
		bi.DurationMinutes = *q.DurationMinutes
	}
	if q.TargetTime != nil {
		bi.TargetTime = *q.TargetTime
	}
	if q.FrameCount != nil {
		bi.FrameCount = *q.FrameCount
	}
	if bi.Type == "" {
		bi = BookingIntent{Type: BookingTimer, DurationMinutes: 60}
	}
	return bi
}
