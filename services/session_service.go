package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

// SessionService mengelola lifecycle occupancy meja: start, stop,
// auto-release, dan update ringan selama aktif.
type SessionService struct {
	DB       *gorm.DB
	Resolver *ConflictResolver
	Queue    *QueueService
	Billing  *BillingService
}

func NewSessionService(db *gorm.DB, resolver *ConflictResolver, queue *QueueService, billing *BillingService) *SessionService {
	return &SessionService{DB: db, Resolver: resolver, Queue: queue, Billing: billing}
}

type StartRequest struct {
	TableID       uint
	GameID        uint
	CustomerName  string
	Intent        models.BookingIntent
	ReservationID *uint
	CartItems     []CartItem
	Override      OverrideMode
}

type StopResult struct {
	Session         *models.Session  `json:"session"`
	Bill            *models.Bill     `json:"bill,omitempty"`
	QueueAssignment *QueueAssignment `json:"queue_assignment,omitempty"`
}

// Start membuka session di satu meja. Seluruh check-then-act berjalan dalam
// transaksi dengan row lock di meja; kalau dua caller balapan, yang kalah
// gagal di lock atau di unique index active_table_key, bukan sukses ganda.
func (ss *SessionService) Start(scope models.Scope, req StartRequest) (*models.Session, *models.Order, error) {
	if req.CustomerName == "" {
		return nil, nil, utils.NewValidationError("customer_name is required")
	}

	now := time.Now()
	end, err := models.ComputeEndTime(req.Intent, now)
	if err != nil {
		return nil, nil, utils.NewValidationError(err.Error())
	}

	var session models.Session
	var order *models.Order

	txErr := ss.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := scope.Apply(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			First(&table, req.TableID).Error; err != nil {
			return utils.NewNotFoundError("table not found")
		}
		if table.GameID != req.GameID {
			return utils.NewValidationError("table is not set up for this game")
		}
		if table.Status == models.TableStatusMaintenance {
			return utils.NewConflictError("table is under maintenance", nil)
		}

		// Self-healing untuk status basi: status meja bilang terpakai tapi
		// tidak ada session aktif. Tutup paksa sisa session aktif (kalau
		// ternyata ada yang menggantung) dan lanjutkan; drift seperti ini
		// juga disapu reconciler.
		if table.Status != models.TableStatusAvailable {
			var active int64
			if err := scope.Apply(tx).Model(&models.Session{}).
				Where("table_id = ? AND status = ?", table.ID, models.SessionStatusActive).
				Count(&active).Error; err != nil {
				return err
			}
			if active == 0 {
				utils.ErrorLogger.Printf("Table %d status %q is stale (no active session), self-healing",
					table.ID, table.Status)
				if err := scope.Apply(tx.Model(&models.Session{})).
					Where("table_id = ? AND status = ?", table.ID, models.SessionStatusActive).
					Updates(map[string]interface{}{
						"status":           models.SessionStatusCompleted,
						"active_table_key": gorm.Expr("NULL"),
						"ended_at":         now,
					}).Error; err != nil {
					return err
				}
				table.Status = models.TableStatusAvailable
			}
		}

		exclude := Exclusion{}
		if req.ReservationID != nil {
			exclude.ReservationID = *req.ReservationID
		}
		report := ss.Resolver.CheckConflicts(tx, scope, table.ID, Window{Start: now, End: end}, exclude)
		if report.Blocks(req.Override) {
			details := conflictDetails(report, ss.Resolver.Summarize(report))
			if req.Intent.Type == models.BookingTimer {
				details["alternatives"] = ss.Resolver.SuggestAlternatives(tx, scope, table.ID, now, req.Intent.DurationMinutes)
			}
			return utils.NewConflictError("table has conflicting bookings", details)
		}

		// Reservation yang direferensikan dianggap fulfilled, bukan konflik.
		if req.ReservationID != nil {
			var rv models.Reservation
			if err := scope.Apply(tx).First(&rv, *req.ReservationID).Error; err != nil {
				return utils.NewNotFoundError("reservation not found")
			}
			if rv.TableID != table.ID {
				return utils.NewValidationError("reservation is for a different table")
			}
			if rv.Status == models.ReservationStatusCancelled {
				return utils.NewValidationError("reservation is already cancelled")
			}
			if err := tx.Model(&rv).Update("status", models.ReservationStatusActive).Error; err != nil {
				return err
			}
		}

		key := table.ID
		session = models.Session{
			StationID:      scope.StationID,
			TableID:        table.ID,
			GameID:         req.GameID,
			CustomerName:   req.CustomerName,
			Status:         models.SessionStatusActive,
			ActiveTableKey: &key,
			StartTime:      now,
			EndTime:        end,
			ReservationID:  req.ReservationID,
		}
		applySessionIntentColumns(&session, req.Intent)
		if err := tx.Create(&session).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.NewConflictError("table already has an active session", nil)
			}
			return err
		}

		if len(req.CartItems) > 0 {
			o, err := createPendingOrder(tx, scope, &session.ID, nil, req.CartItems)
			if err != nil {
				return err
			}
			order = o
		}

		if session.EndTime == nil {
			table.Status = models.TableStatusOccupied
		} else {
			table.Status = models.TableStatusReserved
		}
		return tx.Save(&table).Error
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	utils.InfoLogger.Printf("Session %d started at table %d (%s)",
		session.ID, session.TableID, session.BookingType)
	realtime.BroadcastSessionStart(session)
	return &session, order, nil
}

// Stop menutup session aktif, membagikan meja yang bebas ke antrean,
// merekonsiliasi reservation yang windownya sedang berjalan, dan membuat
// bill kecuali skipBill. Panggilan kedua pada session completed ditolak
// tanpa side effect.
func (ss *SessionService) Stop(scope models.Scope, sessionID uint, skipBill bool) (*StopResult, error) {
	var result StopResult

	txErr := ss.DB.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := scope.Apply(tx).First(&session, sessionID).Error; err != nil {
			return utils.NewNotFoundError("session not found")
		}
		if session.Status != models.SessionStatusActive {
			return utils.NewValidationError("session is not active")
		}

		var table models.Table
		if err := scope.Apply(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			First(&table, session.TableID).Error; err != nil {
			return err
		}

		now := time.Now()
		session.Status = models.SessionStatusCompleted
		session.EndedAt = &now
		session.ActiveTableKey = nil
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		assignment, err := ss.Queue.TryAssignFreedTable(tx, scope, session.TableID, session.GameID)
		if err != nil {
			return err
		}
		result.QueueAssignment = assignment
		if assignment == nil {
			if err := freeTable(tx, scope, session.TableID); err != nil {
				return err
			}
		}

		// Reservation yang windownya mencakup sekarang dianggap terpenuhi
		// oleh walk-in ini, kecuali yang memang dikonsumsi session.
		q := scope.Apply(tx.Model(&models.Reservation{})).
			Where("table_id = ? AND status IN ?", session.TableID,
				[]string{models.ReservationStatusPending, models.ReservationStatusActive}).
			Where("from_time <= ? AND to_time > ?", now, now)
		if session.ReservationID != nil {
			q = q.Where("id <> ?", *session.ReservationID)
		}
		if err := q.Update("status", models.ReservationStatusCancelled).Error; err != nil {
			return err
		}

		if !skipBill {
			bill, err := ss.Billing.CreateBill(tx, scope, &session, &table, now)
			if err != nil {
				return err
			}
			result.Bill = bill
		}

		result.Session = &session
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	utils.InfoLogger.Printf("Session %d stopped (skip_bill=%v)", sessionID, skipBill)
	realtime.BroadcastSessionStop(result)
	return &result, nil
}

// AutoRelease dipanggil oleh trigger eksternal (timer client atau sweep
// terjadwal) saat waktu session habis. Cart terakhir dititipkan dulu ke
// order pending, lalu jalurnya sama dengan Stop berbilling. Idempotent:
// panggilan kedua mentok di guard "session is not active" dan tidak pernah
// menghasilkan bill kedua.
func (ss *SessionService) AutoRelease(scope models.Scope, sessionID uint, cartItems []CartItem) (*StopResult, error) {
	var session models.Session
	if err := scope.Apply(ss.DB).First(&session, sessionID).Error; err != nil {
		return nil, utils.NewNotFoundError("session not found")
	}
	if session.Status != models.SessionStatusActive {
		return nil, utils.NewValidationError("session is not active")
	}

	if len(cartItems) > 0 {
		if err := ss.appendCartItems(scope, &session, cartItems); err != nil {
			return nil, err
		}
	}

	return ss.Stop(scope, sessionID, false)
}

type SessionPatch struct {
	FrameCount      *int
	DurationMinutes *int
	CartItems       []CartItem
}

// Update mengubah frame count, durasi, atau cart selama session aktif.
// Tidak ada side effect ke meja atau billing.
func (ss *SessionService) Update(scope models.Scope, sessionID uint, patch SessionPatch) (*models.Session, error) {
	var session models.Session
	if err := scope.Apply(ss.DB).First(&session, sessionID).Error; err != nil {
		return nil, utils.NewNotFoundError("session not found")
	}
	if session.Status != models.SessionStatusActive {
		return nil, utils.NewValidationError("session is not active")
	}

	if patch.FrameCount != nil {
		if *patch.FrameCount <= 0 {
			return nil, utils.NewValidationError("frame_count must be > 0")
		}
		session.FrameCount = patch.FrameCount
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes <= 0 {
			return nil, utils.NewValidationError("duration_minutes must be > 0")
		}
		end := session.StartTime.Add(time.Duration(*patch.DurationMinutes) * time.Minute)

		// Perpanjangan durasi dicek ulang terhadap window baru; session ini
		// sendiri dikecualikan. Konflik level error menolak perpanjangan.
		report := ss.Resolver.CheckConflicts(ss.DB, scope, session.TableID,
			Window{Start: session.StartTime, End: &end}, Exclusion{SessionID: session.ID})
		if report.Blocks(OverrideAcknowledgeWarnings) {
			return nil, utils.NewConflictError("extended duration conflicts with existing bookings",
				conflictDetails(report, ss.Resolver.Summarize(report)))
		}

		session.DurationMinutes = patch.DurationMinutes
		session.EndTime = &end
	}
	if err := ss.DB.Save(&session).Error; err != nil {
		return nil, err
	}

	if len(patch.CartItems) > 0 {
		if err := ss.appendCartItems(scope, &session, patch.CartItems); err != nil {
			return nil, err
		}
	}

	return &session, nil
}

// appendCartItems menambahkan items ke order pending milik session, membuat
// ordernya dulu kalau belum ada.
func (ss *SessionService) appendCartItems(scope models.Scope, session *models.Session, items []CartItem) error {
	return ss.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := scope.Apply(tx).
			Where("session_id = ? AND status = ?", session.ID, models.OrderStatusPending).
			First(&order).Error
		if err == gorm.ErrRecordNotFound {
			_, err = createPendingOrder(tx, scope, &session.ID, nil, items)
			return err
		}
		if err != nil {
			return err
		}

		total := order.TotalAmount
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
				return err
			}
		}
		return tx.Model(&order).Update("total_amount", total).Error
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

