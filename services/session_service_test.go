package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

func newSessionService(db *gorm.DB) *SessionService {
	resolver := NewConflictResolver()
	queue := NewQueueService(db, resolver)
	billing := NewBillingService(db)
	return NewSessionService(db, resolver, queue, billing)
}

func TestStartBoundedTimerSession(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	session, order, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 60},
	})
	assert.NoError(t, err)
	assert.Nil(t, order)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.NotNil(t, session.EndTime)
	assert.NotNil(t, session.ActiveTableKey)

	// Session dengan rencana akhir -> meja reserved
	var got models.Table
	db.First(&got, table.ID)
	assert.Equal(t, models.TableStatusReserved, got.Status)
}

func TestStartOpenEndedFrameSession(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingFrame, FrameCount: 3},
	})
	assert.NoError(t, err)
	assert.Nil(t, session.EndTime)

	// Open-ended -> meja occupied
	var got models.Table
	db.First(&got, table.ID)
	assert.Equal(t, models.TableStatusOccupied, got.Status)
}

func TestStartRejectsGameMismatchAndMaintenance(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	_, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID + 1,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 30},
	})
	appErr, ok := err.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	db.Model(&table).Update("status", models.TableStatusMaintenance)
	_, _, err = svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 30},
	})
	appErr, ok = err.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Code)
}

func TestStartBlockedByPendingReservationUnlessAcknowledged(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	now := time.Now()
	db.Create(&models.Reservation{
		StationID:    scope.StationID,
		TableID:      table.ID,
		CustomerName: "Sari",
		FromTime:     now.Add(15 * time.Minute),
		ToTime:       now.Add(75 * time.Minute),
		Status:       models.ReservationStatusPending,
	})

	req := StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 60},
	}

	_, _, err := svc.Start(scope, req)
	appErr, ok := err.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Code)
	// 409 membawa report + alternatives untuk booking timer
	details := appErr.Details.(map[string]interface{})
	assert.Contains(t, details, "report")
	assert.Contains(t, details, "alternatives")

	// Warning bisa dilanjutkan setelah di-acknowledge
	req.Override = OverrideAcknowledgeWarnings
	session, _, err := svc.Start(scope, req)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
}

func TestStartSelfHealsStaleTableStatus(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	// Status meja bilang occupied tapi tidak ada session aktif
	db.Model(&table).Update("status", models.TableStatusOccupied)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 30},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
}

func TestStartConsumesReservation(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	now := time.Now()
	reservation := models.Reservation{
		StationID:    scope.StationID,
		TableID:      table.ID,
		CustomerName: "Sari",
		FromTime:     now.Add(-5 * time.Minute),
		ToTime:       now.Add(55 * time.Minute),
		Status:       models.ReservationStatusPending,
	}
	db.Create(&reservation)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:       table.ID,
		GameID:        table.GameID,
		CustomerName:  "Sari",
		Intent:        models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 60},
		ReservationID: &reservation.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, &reservation.ID, session.ReservationID)

	var got models.Reservation
	db.First(&got, reservation.ID)
	assert.Equal(t, models.ReservationStatusActive, got.Status)

	// Stop tidak membatalkan reservation yang dikonsumsi session ini
	_, err = svc.Stop(scope, session.ID, false)
	assert.NoError(t, err)
	db.First(&got, reservation.ID)
	assert.Equal(t, models.ReservationStatusActive, got.Status)
}

func TestStopCreatesBillAndFreesTable(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 60},
		CartItems:    []CartItem{{Name: "Es Teh", Quantity: 2, Price: 5000}},
	})
	assert.NoError(t, err)

	result, err := svc.Stop(scope, session.ID, false)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, result.Session.Status)
	assert.NotNil(t, result.Session.EndedAt)
	assert.Nil(t, result.Session.ActiveTableKey)

	// Durasi fix -> 60 menit tertagih; charge meja 1 jam + order
	assert.NotNil(t, result.Bill)
	assert.Equal(t, 60, result.Bill.BilledMinutes)
	assert.Equal(t, float64(60000), result.Bill.TableCharge)
	assert.Equal(t, float64(10000), result.Bill.OrderTotal)
	assert.Equal(t, float64(70000), result.Bill.TotalAmount)

	var got models.Table
	db.First(&got, table.ID)
	assert.Equal(t, models.TableStatusAvailable, got.Status)

	// Order pendamping ikut ditagih
	var order models.Order
	db.Where("session_id = ?", session.ID).First(&order)
	assert.Equal(t, models.OrderStatusBilled, order.Status)

	// Stop kedua ditolak tanpa side effect
	_, err = svc.Stop(scope, session.ID, false)
	appErr, ok := err.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestAutoReleaseTwiceProducesOneBill(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 30},
	})
	assert.NoError(t, err)

	result, err := svc.AutoRelease(scope, session.ID, []CartItem{{Name: "Kopi", Quantity: 1, Price: 8000}})
	assert.NoError(t, err)
	assert.NotNil(t, result.Bill)

	_, err = svc.AutoRelease(scope, session.ID, nil)
	assert.Error(t, err)

	var bills int64
	db.Model(&models.Bill{}).Where("session_id = ?", session.ID).Count(&bills)
	assert.Equal(t, int64(1), bills)
}

func TestUpdateSessionDurationRecomputesEndTime(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 30},
	})
	assert.NoError(t, err)

	duration := 90
	updated, err := svc.Update(scope, session.ID, SessionPatch{DurationMinutes: &duration})
	assert.NoError(t, err)
	assert.Equal(t, 90, *updated.DurationMinutes)
	expected := updated.StartTime.Add(90 * time.Minute)
	assert.WithinDuration(t, expected, *updated.EndTime, time.Second)

	frames := -1
	_, err = svc.Update(scope, session.ID, SessionPatch{FrameCount: &frames})
	assert.Error(t, err)
}

func TestUpdateRejectsExtensionOverActiveReservation(t *testing.T) {
	db, scope, table := setupServiceDB(t)
	svc := newSessionService(db)

	session, _, err := svc.Start(scope, StartRequest{
		TableID:      table.ID,
		GameID:       table.GameID,
		CustomerName: "Budi",
		Intent:       models.BookingIntent{Type: models.BookingTimer, DurationMinutes: 60},
	})
	assert.NoError(t, err)

	// Reservation active tepat setelah session berakhir
	db.Create(&models.Reservation{
		StationID:    scope.StationID,
		TableID:      table.ID,
		CustomerName: "Siti",
		FromTime:     session.StartTime.Add(60 * time.Minute),
		ToTime:       session.StartTime.Add(120 * time.Minute),
		Status:       models.ReservationStatusActive,
	})

	duration := 180
	_, err = svc.Update(scope, session.ID, SessionPatch{DurationMinutes: &duration})
	assert.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Code)

	// Durasi lama tidak berubah
	var got models.Session
	db.First(&got, session.ID)
	assert.Equal(t, 60, *got.DurationMinutes)
}

func TestActiveSessionUniquePerTable(t *testing.T) {
	db, scope, table := setupServiceDB(t)

	key := table.ID
	first := models.Session{
		StationID:      scope.StationID,
		TableID:        table.ID,
		GameID:         table.GameID,
		CustomerName:   "Budi",
		Status:         models.SessionStatusActive,
		ActiveTableKey: &key,
		BookingType:    models.BookingTimer,
		StartTime:      time.Now(),
	}
	assert.NoError(t, db.Create(&first).Error)

	// Unique index active_table_key menahan session aktif kedua di meja
	// yang sama, apa pun yang dilihat pengecekan aplikasi.
	second := first
	second.ID = 0
	err := db.Create(&second).Error
	assert.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	// Setelah key di-NULL-kan (session pertama selesai), meja bisa dipakai lagi
	assert.NoError(t, db.Model(&first).Updates(map[string]interface{}{
		"status":           models.SessionStatusCompleted,
		"active_table_key": gorm.Expr("NULL"),
	}).Error)
	third := first
	third.ID = 0
	third.ActiveTableKey = &key
	assert.NoError(t, db.Create(&third).Error)
}
