package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

// setupServiceDB -> SQLite in-memory + migrate + seed station/game/table
func setupServiceDB(t *testing.T) (*gorm.DB, models.Scope, models.Table) {
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	// Satu koneksi saja: in-memory sqlite hidup per koneksi, koneksi kedua
	// dari pool akan melihat database kosong.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Station{},
		&models.User{},
		&models.Game{},
		&models.Table{},
		&models.Session{},
		&models.Reservation{},
		&models.QueueEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.Bill{},
		&models.Notification{},
		&models.MaintenanceLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	station := models.Station{Name: "Test Hall", Code: "TST"}
	db.Create(&station)

	game := models.Game{StationID: station.ID, Name: "8-Ball"}
	db.Create(&game)

	table := models.Table{
		StationID:    station.ID,
		GameID:       game.ID,
		TableNumber:  "A1",
		Status:       models.TableStatusAvailable,
		HourlyRate:   60000,
		PerFrameRate: 25000,
	}
	db.Create(&table)

	return db, models.Scope{StationID: station.ID}, table
}

func activeSessionOn(db *gorm.DB, scope models.Scope, table models.Table, durationMinutes int) models.Session {
	now := time.Now()
	key := table.ID
	session := models.Session{
		StationID:       scope.StationID,
		TableID:         table.ID,
		GameID:          table.GameID,
		CustomerName:    "Budi",
		Status:          models.SessionStatusActive,
		ActiveTableKey:  &key,
		BookingType:     models.BookingTimer,
		DurationMinutes: &durationMinutes,
		StartTime:       now,
	}
	end := now.Add(time.Duration(durationMinutes) * time.Minute)
	session.EndTime = &end
	db.Create(&session)
	return session
}

func TestCheckConflictsActiveSession(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	session := activeSessionOn(db, scope, table, 60)

	report := resolver.CheckConflicts(db, scope, table.ID, WindowUntil(time.Now(), 30), Exclusion{})
	assert.True(t, report.HasConflicts)
	assert.Equal(t, SeverityError, report.Severity)
	assert.Equal(t, ConflictActiveSession, report.Conflicts[0].Kind)
	assert.True(t, report.Blocks(OverrideNone))
	assert.True(t, report.Blocks(OverrideAcknowledgeWarnings))

	// Session yang dikecualikan tidak dihitung
	report = resolver.CheckConflicts(db, scope, table.ID, WindowUntil(time.Now(), 30),
		Exclusion{SessionID: session.ID})
	assert.False(t, report.HasConflicts)
}

func TestCheckConflictsReservationSeverity(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	now := time.Now()
	reservation := models.Reservation{
		StationID:    scope.StationID,
		TableID:      table.ID,
		CustomerName: "Sari",
		FromTime:     now.Add(15 * time.Minute),
		ToTime:       now.Add(75 * time.Minute),
		Status:       models.ReservationStatusPending,
	}
	db.Create(&reservation)

	report := resolver.CheckConflicts(db, scope, table.ID, WindowUntil(now, 60), Exclusion{})
	assert.True(t, report.HasConflicts)
	assert.Equal(t, SeverityWarning, report.Severity)
	assert.True(t, report.Blocks(OverrideNone))
	assert.False(t, report.Blocks(OverrideAcknowledgeWarnings))

	// Reservation active = error, tidak bisa di-acknowledge
	db.Model(&reservation).Update("status", models.ReservationStatusActive)
	report = resolver.CheckConflicts(db, scope, table.ID, WindowUntil(now, 60), Exclusion{})
	assert.Equal(t, SeverityError, report.Severity)
	assert.True(t, report.Blocks(OverrideAcknowledgeWarnings))

	// Window yang tidak bersinggungan lolos
	report = resolver.CheckConflicts(db, scope, table.ID, WindowUntil(now.Add(2*time.Hour), 30), Exclusion{})
	assert.False(t, report.HasConflicts)
}

func TestCheckConflictsMalformedReservationFailsClosed(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	now := time.Now()
	db.Create(&models.Reservation{
		StationID:    scope.StationID,
		TableID:      table.ID,
		CustomerName: "Rusak",
		FromTime:     now.Add(30 * time.Minute),
		ToTime:       now.Add(-30 * time.Minute), // to_time sebelum from_time
		Status:       models.ReservationStatusPending,
	})

	report := resolver.CheckConflicts(db, scope, table.ID, WindowUntil(now, 30), Exclusion{})
	assert.True(t, report.HasConflicts)
	assert.Equal(t, SeverityError, report.Severity)
	assert.Equal(t, ConflictSystemError, report.Conflicts[0].Kind)
	assert.True(t, report.Blocks(OverrideAcknowledgeWarnings))
}

func TestCheckConflictsSeatedQueueEntry(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	key := table.ID
	db.Create(&models.QueueEntry{
		StationID:      scope.StationID,
		Code:           "q-0001",
		CustomerName:   "Andi",
		GameID:         table.GameID,
		Status:         models.QueueStatusSeated,
		SeatedTableKey: &key,
		TableID:        &key,
		BookingType:    models.BookingTimer,
	})

	report := resolver.CheckConflicts(db, scope, table.ID, WindowUntil(time.Now(), 30), Exclusion{})
	assert.True(t, report.HasConflicts)
	assert.Equal(t, SeverityWarning, report.Severity)
	assert.Equal(t, ConflictQueueSeated, report.Conflicts[0].Kind)
}

func TestCheckConflictsScopedToStation(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	activeSessionOn(db, scope, table, 60)

	// Station lain tidak melihat konflik station ini
	other := models.Scope{StationID: scope.StationID + 99}
	report := resolver.CheckConflicts(db, other, table.ID, WindowUntil(time.Now(), 30), Exclusion{})
	assert.False(t, report.HasConflicts)
}

func TestSuggestAlternatives(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	activeSessionOn(db, scope, table, 60)

	now := time.Now()
	alts := resolver.SuggestAlternatives(db, scope, table.ID, now, 30)

	// Kandidat +60, +90, +120 menit bebas; maksimal tiga yang dikembalikan
	assert.Len(t, alts, 3)
	for _, w := range alts {
		assert.False(t, w.Start.Before(now.Add(59*time.Minute)))
	}
}

func TestSuggestAlternativesAllBusy(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	resolver := NewConflictResolver()

	// Session open-ended memblok semua kandidat
	now := time.Now()
	key := table.ID
	db.Create(&models.Session{
		StationID:      scope.StationID,
		TableID:        table.ID,
		GameID:         table.GameID,
		CustomerName:   "Frame",
		Status:         models.SessionStatusActive,
		ActiveTableKey: &key,
		BookingType:    models.BookingFrame,
		StartTime:      now.Add(-10 * time.Minute),
	})

	alts := resolver.SuggestAlternatives(db, scope, table.ID, now, 30)
	assert.Empty(t, alts)
}

func TestSummarize(t *testing.T) {
	resolver := NewConflictResolver()

	clean := resolver.Summarize(Report{})
	assert.True(t, clean.CanProceed)

	warn := resolver.Summarize(Report{
		HasConflicts: true,
		Severity:     SeverityWarning,
		Conflicts:    []Conflict{{Severity: SeverityWarning, Message: "reserved soon"}},
	})
	assert.True(t, warn.CanProceed)
	assert.NotEmpty(t, warn.Question)

	block := resolver.Summarize(Report{
		HasConflicts: true,
		Severity:     SeverityError,
		Conflicts:    []Conflict{{Severity: SeverityError, Message: "active session"}},
	})
	assert.False(t, block.CanProceed)
	assert.Equal(t, "Table unavailable", block.Title)
}
