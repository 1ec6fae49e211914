package models

import "time"

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// Session adalah occupancy aktif di satu meja. Invariant inti: maksimal satu
// session aktif per meja, dijaga oleh unique index pada active_table_key
// (berisi table id selama aktif, NULL setelah selesai) sehingga pemanggil
// concurrent yang kalah gagal di constraint, bukan sukses diam-diam.
type Session struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	StationID      uint    `gorm:"not null;index" json:"station_id"`
	Station        Station `gorm:"foreignKey:StationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID        uint    `gorm:"not null;index" json:"table_id"`
	Table          Table   `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	GameID         uint    `gorm:"not null" json:"game_id"`
	CustomerName   string  `gorm:"type:varchar(100);not null" json:"customer_name"`
	Status         string  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ActiveTableKey *uint   `gorm:"uniqueIndex:idx_sessions_active_table" json:"-"`

	BookingType     BookingType `gorm:"type:varchar(10);not null" json:"booking_type"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	TargetTime      *string     `gorm:"type:varchar(5)" json:"target_time,omitempty"`
	FrameCount      *int        `json:"frame_count,omitempty"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	// EndTime adalah rencana akhir hasil ComputeEndTime; nil = open-ended.
	EndTime *time.Time `json:"end_time,omitempty"`
	// EndedAt adalah waktu aktual session ditutup.
	EndedAt *time.Time `json:"ended_at,omitempty"`

	// ReservationID menunjuk reservation yang "dikonsumsi" session ini,
	// supaya tidak dihitung sebagai konflik dan tidak di-cancel saat stop.
	ReservationID *uint `json:"reservation_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Intent merakit ulang BookingIntent dari kolom yang di-flatten.
func (s *Session) Intent() BookingIntent {
	bi := BookingIntent{Type: s.BookingType}
	if s.DurationMinutes != nil {
		bi.DurationMinutes = *s.DurationMinutes
	}
	if s.TargetTime != nil {
		bi.TargetTime = *s.TargetTime
	}
	if s.FrameCount != nil {
		bi.FrameCount = *s.FrameCount
	}
	return bi
}
