package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

// Estimasi kasar: 15 menit per party yang masih menunggu di game yang sama.
const waitMinutesPerParty = 15

// Guard window untuk reservation yang sudah dekat: meja yang baru bebas tidak
// boleh diberikan ke antrean kalau ada reservation di kira-kira
// [-15m, +60m] dari sekarang.
const (
	imminentReservationLookback = 15 * time.Minute
	imminentReservationAhead    = 60 * time.Minute
)

// QueueService mengelola antrean walk-in: enqueue, assignment manual/otomatis,
// dan pembagian meja yang baru bebas ke waiting entry berikutnya.
type QueueService struct {
	DB       *gorm.DB
	Resolver *ConflictResolver
}

func NewQueueService(db *gorm.DB, resolver *ConflictResolver) *QueueService {
	return &QueueService{DB: db, Resolver: resolver}
}

type EnqueueRequest struct {
	CustomerName     string
	GameID           uint
	PreferredTableID *uint
	Intent           models.BookingIntent
	CartItems        []CartItem
}

// QueueAssignment adalah hasil jalur pembagian meja bebas: entry yang
// langsung dilayani plus session yang dibuka untuknya.
type QueueAssignment struct {
	Entry   *models.QueueEntry `json:"entry"`
	Session *models.Session    `json:"session"`
}

// Enqueue memasukkan customer ke antrean, menghitung estimasi tunggu, dan
// membuat order pending pendamping kalau ada cart.
func (qs *QueueService) Enqueue(scope models.Scope, req EnqueueRequest) (*models.QueueEntry, *models.Order, error) {
	if req.CustomerName == "" {
		return nil, nil, utils.NewValidationError("customer_name is required")
	}
	if err := req.Intent.Validate(); err != nil {
		return nil, nil, utils.NewValidationError(err.Error())
	}

	var game models.Game
	if err := scope.Apply(qs.DB).First(&game, req.GameID).Error; err != nil {
		return nil, nil, utils.NewNotFoundError("game not found")
	}

	if req.PreferredTableID != nil {
		var table models.Table
		if err := scope.Apply(qs.DB).First(&table, *req.PreferredTableID).Error; err != nil {
			return nil, nil, utils.NewNotFoundError("preferred table not found")
		}
		if table.GameID != req.GameID {
			return nil, nil, utils.NewValidationError("preferred table is not set up for this game")
		}
	}

	var waiting int64
	if err := scope.Apply(qs.DB).Model(&models.QueueEntry{}).
		Where("game_id = ? AND status = ?", req.GameID, models.QueueStatusWaiting).
		Count(&waiting).Error; err != nil {
		return nil, nil, err
	}

	entry := models.QueueEntry{
		StationID:            scope.StationID,
		Code:                 uuid.NewString(),
		CustomerName:         req.CustomerName,
		GameID:               req.GameID,
		PreferredTableID:     req.PreferredTableID,
		Status:               models.QueueStatusWaiting,
		EstimatedWaitMinutes: int(waiting) * waitMinutesPerParty,
	}
	applyIntentColumns(&entry, req.Intent)

	var order *models.Order
	err := qs.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if len(req.CartItems) > 0 {
			o, err := createPendingOrder(tx, scope, nil, &entry.ID, req.CartItems)
			if err != nil {
				return err
			}
			order = o
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	utils.InfoLogger.Printf("Queue entry %s created (game=%d, wait=%dm)",
		entry.Code, entry.GameID, entry.EstimatedWaitMinutes)
	realtime.BroadcastQueueUpdate(entry)
	return &entry, order, nil
}

// Assign menempatkan waiting entry ke meja secara manual. Meja di-lock FOR
// UPDATE selama check-then-act supaya dua staff tidak membagikan meja yang
// sama.
func (qs *QueueService) Assign(scope models.Scope, entryID, tableID uint, override OverrideMode) (*models.QueueEntry, error) {
	var entry models.QueueEntry

	err := qs.DB.Transaction(func(tx *gorm.DB) error {
		if err := scope.Apply(tx).First(&entry, entryID).Error; err != nil {
			return utils.NewNotFoundError("queue entry not found")
		}
		if entry.Status != models.QueueStatusWaiting {
			return utils.NewValidationError("queue entry is not waiting")
		}

		var table models.Table
		if err := scope.Apply(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			First(&table, tableID).Error; err != nil {
			return utils.NewNotFoundError("table not found")
		}
		if table.Status != models.TableStatusAvailable {
			return utils.NewValidationError("table is not available")
		}
		if table.GameID != entry.GameID {
			return utils.NewValidationError("table is not set up for this game")
		}

		now := time.Now()
		end, err := models.ComputeEndTime(entry.Intent(), now)
		if err != nil {
			return utils.NewValidationError(err.Error())
		}
		report := qs.Resolver.CheckConflicts(tx, scope, tableID, Window{Start: now, End: end},
			Exclusion{QueueEntryID: entry.ID})
		if report.Blocks(override) {
			return utils.NewConflictError("table has conflicting bookings", conflictDetails(report, qs.Resolver.Summarize(report)))
		}

		key := table.ID
		entry.Status = models.QueueStatusSeated
		entry.SeatedTableKey = &key
		entry.TableID = &key
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		table.Status = models.TableStatusOccupied
		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Queue entry %s seated at table %d", entry.Code, tableID)
	realtime.BroadcastQueueUpdate(entry)
	return &entry, nil
}

// AutoNext mengambil waiting entry paling awal (opsional difilter game),
// mencari meja available yang cocok, dan men-seat-nya. 400 kalau tidak ada
// kombinasi yang feasible.
func (qs *QueueService) AutoNext(scope models.Scope, gameID *uint, override OverrideMode) (*models.QueueEntry, error) {
	q := scope.Apply(qs.DB).Where("status = ?", models.QueueStatusWaiting)
	if gameID != nil {
		q = q.Where("game_id = ?", *gameID)
	}

	var entry models.QueueEntry
	if err := q.Order("created_at ASC").First(&entry).Error; err != nil {
		return nil, utils.NewValidationError("no waiting queue entries")
	}

	var tables []models.Table
	if err := scope.Apply(qs.DB).
		Where("game_id = ? AND status = ?", entry.GameID, models.TableStatusAvailable).
		Order("table_number ASC").
		Find(&tables).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	end, err := models.ComputeEndTime(entry.Intent(), now)
	if err != nil {
		return nil, utils.NewValidationError(err.Error())
	}
	for _, table := range tables {
		report := qs.Resolver.CheckConflicts(qs.DB, scope, table.ID, Window{Start: now, End: end},
			Exclusion{QueueEntryID: entry.ID})
		if report.Blocks(override) {
			continue
		}
		return qs.Assign(scope, entry.ID, table.ID, override)
	}

	return nil, utils.NewValidationError("no feasible table for the next queue entry")
}

// Complete menutup entry yang sudah seated; meja kembali available.
func (qs *QueueService) Complete(scope models.Scope, entryID uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry

	err := qs.DB.Transaction(func(tx *gorm.DB) error {
		if err := scope.Apply(tx).First(&entry, entryID).Error; err != nil {
			return utils.NewNotFoundError("queue entry not found")
		}
		if entry.Status != models.QueueStatusSeated {
			return utils.NewValidationError("queue entry is not seated")
		}

		if entry.TableID != nil {
			if err := freeTable(tx, scope, *entry.TableID); err != nil {
				return err
			}
		}

		entry.Status = models.QueueStatusServed
		entry.SeatedTableKey = nil
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	realtime.BroadcastQueueUpdate(entry)
	return &entry, nil
}

// Cancel membatalkan entry (termasuk jalur no-show untuk entry seated).
// Meja dibebaskan kalau perlu dan order pending pendamping ikut dibatalkan.
func (qs *QueueService) Cancel(scope models.Scope, entryID uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry

	err := qs.DB.Transaction(func(tx *gorm.DB) error {
		if err := scope.Apply(tx).First(&entry, entryID).Error; err != nil {
			return utils.NewNotFoundError("queue entry not found")
		}
		if entry.Status != models.QueueStatusWaiting && entry.Status != models.QueueStatusSeated {
			return utils.NewValidationError("queue entry is not waiting or seated")
		}

		if entry.Status == models.QueueStatusSeated && entry.TableID != nil {
			if err := freeTable(tx, scope, *entry.TableID); err != nil {
				return err
			}
		}

		entry.Status = models.QueueStatusCancelled
		entry.SeatedTableKey = nil
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}

		return cancelPendingOrders(tx, scope, entry.ID)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Queue entry %s cancelled", entry.Code)
	realtime.BroadcastQueueUpdate(entry)
	return &entry, nil
}

// Clear membatalkan semua waiting entry milik station, misalnya saat tutup.
func (qs *QueueService) Clear(scope models.Scope) (int64, error) {
	var cancelled int64

	err := qs.DB.Transaction(func(tx *gorm.DB) error {
		var entries []models.QueueEntry
		if err := scope.Apply(tx).Where("status = ?", models.QueueStatusWaiting).
			Find(&entries).Error; err != nil {
			return err
		}
		for _, entry := range entries {
			entry.Status = models.QueueStatusCancelled
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
			if err := cancelPendingOrders(tx, scope, entry.ID); err != nil {
				return err
			}
			cancelled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	realtime.BroadcastQueueUpdate(map[string]interface{}{"cleared": cancelled})
	return cancelled, nil
}

// TryAssignFreedTable dipanggil hanya dari jalur stop/auto-release session.
// Entry dengan preferred table yang cocok menang atas FIFO murni. Kalau ada
// reservation yang sudah dekat di meja ini, pembagian ditolak dan meja
// dikembalikan available oleh caller. Pada jalur ini session langsung dibuka
// untuk entry terpilih (status seated dilewati, entry langsung served) dan
// order pending milik entry dipakai ulang, bukan dibuat baru.
func (qs *QueueService) TryAssignFreedTable(tx *gorm.DB, scope models.Scope, tableID, gameID uint) (*QueueAssignment, error) {
	var table models.Table
	if err := scope.Apply(tx).First(&table, tableID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	var imminent int64
	if err := scope.Apply(tx).Model(&models.Reservation{}).
		Where("table_id = ? AND status IN ?", tableID,
			[]string{models.ReservationStatusPending, models.ReservationStatusActive}).
		Where("from_time < ? AND to_time > ?",
			now.Add(imminentReservationAhead), now.Add(-imminentReservationLookback)).
		Count(&imminent).Error; err != nil {
		return nil, err
	}
	if imminent > 0 {
		utils.InfoLogger.Printf("Table %d freed but held for an imminent reservation", tableID)
		return nil, nil
	}

	entry, err := qs.pickWaitingEntry(tx, scope, tableID, gameID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	end, err := models.ComputeEndTime(entry.Intent(), now)
	if err != nil {
		return nil, err
	}

	key := table.ID
	session := models.Session{
		StationID:      scope.StationID,
		TableID:        table.ID,
		GameID:         gameID,
		CustomerName:   entry.CustomerName,
		Status:         models.SessionStatusActive,
		ActiveTableKey: &key,
		BookingType:    entry.Intent().Type,
		StartTime:      now,
		EndTime:        end,
	}
	applySessionIntentColumns(&session, entry.Intent())
	if err := tx.Create(&session).Error; err != nil {
		return nil, err
	}

	entry.Status = models.QueueStatusServed
	entry.TableID = &key
	entry.SessionID = &session.ID
	entry.SeatedTableKey = nil
	if err := tx.Save(entry).Error; err != nil {
		return nil, err
	}

	// Reuse order pending milik entry supaya tidak dobel.
	if err := tx.Model(&models.Order{}).
		Where("station_id = ? AND queue_entry_id = ? AND status = ?",
			scope.StationID, entry.ID, models.OrderStatusPending).
		Update("session_id", session.ID).Error; err != nil {
		return nil, err
	}

	table.Status = models.TableStatusReserved
	if err := tx.Save(&table).Error; err != nil {
		return nil, err
	}

	notif := models.Notification{
		StationID: scope.StationID,
		Message:   fmt.Sprintf("Queue entry %s assigned to table %s", entry.Code, table.TableNumber),
	}
	if err := tx.Create(&notif).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Freed table %d auto-assigned to queue entry %s (session %d)",
		tableID, entry.Code, session.ID)
	return &QueueAssignment{Entry: entry, Session: &session}, nil
}

// pickWaitingEntry: entry yang preferred table-nya persis meja yang bebas
// menang; selain itu FIFO berdasarkan created_at.
func (qs *QueueService) pickWaitingEntry(tx *gorm.DB, scope models.Scope, tableID, gameID uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry

	err := scope.Apply(tx).
		Where("game_id = ? AND status = ? AND preferred_table_id = ?",
			gameID, models.QueueStatusWaiting, tableID).
		Order("created_at ASC").
		First(&entry).Error
	if err == nil {
		return &entry, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	err = scope.Apply(tx).
		Where("game_id = ? AND status = ?", gameID, models.QueueStatusWaiting).
		Order("created_at ASC").
		First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func freeTable(tx *gorm.DB, scope models.Scope, tableID uint) error {
	return scope.Apply(tx.Model(&models.Table{})).
		Where("id = ? AND status <> ?", tableID, models.TableStatusMaintenance).
		Update("status", models.TableStatusAvailable).Error
}

func cancelPendingOrders(tx *gorm.DB, scope models.Scope, entryID uint) error {
	return scope.Apply(tx.Model(&models.Order{})).
		Where("queue_entry_id = ? AND status = ?", entryID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled).Error
}

func createPendingOrder(tx *gorm.DB, scope models.Scope, sessionID, entryID *uint, items []CartItem) (*models.Order, error) {
	order := models.Order{
		StationID:    scope.StationID,
		SessionID:    sessionID,
		QueueEntryID: entryID,
		Status:       models.OrderStatusPending,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		total += float64(item.Quantity) * item.Price
		orderItem := models.OrderItem{
			OrderID:  order.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Notes:    item.Notes,
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			return nil, err
		}
		order.OrderItems = append(order.OrderItems, orderItem)
	}

	order.TotalAmount = total
	if err := tx.Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func applyIntentColumns(entry *models.QueueEntry, bi models.BookingIntent) {
	entry.BookingType = bi.Type
	switch bi.Type {
	case models.BookingTimer:
		d := bi.DurationMinutes
		entry.DurationMinutes = &d
	case models.BookingSet:
		t := bi.TargetTime
		entry.TargetTime = &t
	case models.BookingFrame:
		f := bi.FrameCount
		entry.FrameCount = &f
	}
}

func applySessionIntentColumns(session *models.Session, bi models.BookingIntent) {
	session.BookingType = bi.Type
	switch bi.Type {
	case models.BookingTimer:
		d := bi.DurationMinutes
		session.DurationMinutes = &d
	case models.BookingSet:
		t := bi.TargetTime
		session.TargetTime = &t
	case models.BookingFrame:
		f := bi.FrameCount
		session.FrameCount = &f
	}
}

// conflictDetails membungkus report + summary ke payload 409.
func conflictDetails(report Report, summary Summary) map[string]interface{} {
	return map[string]interface{}{
		"report":  report,
		"summary": summary,
	}
}
