package models

import "gorm.io/gorm"

// Scope membawa station (tenant) milik caller. Semua query manager wajib
// melewati Apply supaya tidak ada data lintas-station yang bocor.
type Scope struct {
	StationID uint
}

// Apply menambahkan filter station_id ke query.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("station_id = ?", s.StationID)
}
