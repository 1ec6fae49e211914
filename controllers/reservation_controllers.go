package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/services"
	"github.com/danuartha/biliard-app/utils"
)

type ReservationController struct {
	DB       *gorm.DB
	Resolver *services.ConflictResolver
}

func NewReservationController(db *gorm.DB, resolver *services.ConflictResolver) *ReservationController {
	return &ReservationController{DB: db, Resolver: resolver}
}

// CreateReservation -> booking window di satu meja, ditolak 409 kalau
// bentrok dengan session aktif atau reservation lain
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		TableID             uint      `json:"table_id" binding:"required"`
		FromTime            time.Time `json:"from_time" binding:"required"`
		DurationMinutes     int       `json:"duration_minutes" binding:"required"`
		CustomerName        string    `json:"customer_name" binding:"required"`
		Phone               string    `json:"phone"`
		Notes               string    `json:"notes"`
		AcknowledgeWarnings bool      `json:"acknowledge_warnings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.DurationMinutes <= 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("duration_minutes must be > 0"))
		return
	}

	scope := getScope(c)

	toTime := req.FromTime.Add(time.Duration(req.DurationMinutes) * time.Minute)
	window := services.Window{Start: req.FromTime, End: &toTime}

	override := services.OverrideNone
	if req.AcknowledgeWarnings {
		override = services.OverrideAcknowledgeWarnings
	}

	var reservation models.Reservation

	// Check-then-create di bawah row lock meja supaya dua staff tidak
	// membooking window yang sama bersamaan.
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := scope.Apply(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			First(&table, req.TableID).Error; err != nil {
			return utils.NewNotFoundError("table not found")
		}

		report := rc.Resolver.CheckConflicts(tx, scope, table.ID, window, services.Exclusion{})
		if report.Blocks(override) {
			summary := rc.Resolver.Summarize(report)
			return utils.NewConflictError(summary.Message, gin.H{
				"report":       report,
				"summary":      summary,
				"alternatives": rc.Resolver.SuggestAlternatives(tx, scope, table.ID, req.FromTime, req.DurationMinutes),
			})
		}

		reservation = models.Reservation{
			StationID:    scope.StationID,
			TableID:      table.ID,
			CustomerName: req.CustomerName,
			Phone:        req.Phone,
			FromTime:     req.FromTime,
			ToTime:       toTime,
			Status:       models.ReservationStatusPending,
			Notes:        req.Notes,
		}
		return tx.Create(&reservation).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Reservation %d created for table %d (%s)",
		reservation.ID, reservation.TableID, window.Describe())
	realtime.BroadcastReservationUpdate(reservation)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// AutoAssignReservation -> escape hatch: pindahkan reservation ke meja
// available pertama TANPA cek window. Jaminannya lebih lemah daripada
// create; dipakai staff kalau meja asal bermasalah.
func (rc *ReservationController) AutoAssignReservation(c *gin.Context) {
	reservationID, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}

	scope := getScope(c)

	var reservation models.Reservation
	if err := scope.Apply(rc.DB).First(&reservation, reservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if reservation.Status == models.ReservationStatusCancelled {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("reservation is cancelled"))
		return
	}

	var table models.Table
	if err := scope.Apply(rc.DB).
		Where("status = ?", models.TableStatusAvailable).
		Order("table_number ASC").
		First(&table).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("no available table"))
		return
	}

	reservation.TableID = table.ID
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastReservationUpdate(reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation assigned", reservation)
}

// CancelReservation -> cancel tidak membebaskan meja apa pun; reservation
// tidak pernah memegang meja, hanya memblok window
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	reservationID, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}

	var reservation models.Reservation
	if err := getScope(c).Apply(rc.DB).First(&reservation, reservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if reservation.Status == models.ReservationStatusCancelled {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("reservation is already cancelled"))
		return
	}

	reservation.Status = models.ReservationStatusCancelled
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastReservationUpdate(reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

// UpdateReservation -> whitelist field yang boleh diubah: status dan notes
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	reservationID, ok := paramID(c, "reservation_id")
	if !ok {
		return
	}

	var body struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := getScope(c).Apply(rc.DB).First(&reservation, reservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.Status != nil {
		switch *body.Status {
		case models.ReservationStatusPending, models.ReservationStatusActive, models.ReservationStatusCancelled:
			reservation.Status = *body.Status
		default:
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown reservation status %q", *body.Status))
			return
		}
	}
	if body.Notes != nil {
		reservation.Notes = *body.Notes
	}

	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastReservationUpdate(reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// GetAllReservations -> list reservation station, opsional filter status
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	q := getScope(c).Apply(rc.DB).Preload("Table")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := q.Order("from_time ASC").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}
