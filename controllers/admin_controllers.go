package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats mengambil statistik station untuk dashboard admin
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists || roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, errors.New("admin access required"))
		return
	}

	scope := getScope(c)
	today := time.Now().Format("2006-01-02")

	var stats struct {
		TableStats struct {
			Available   int64 `json:"available"`
			Reserved    int64 `json:"reserved"`
			Occupied    int64 `json:"occupied"`
			Maintenance int64 `json:"maintenance"`
		} `json:"table_stats"`
		ActiveSessions      int64   `json:"active_sessions"`
		WaitingQueue        int64   `json:"waiting_queue"`
		PendingReservations int64   `json:"pending_reservations"`
		TodayBills          int64   `json:"today_bills"`
		TodayRevenue        float64 `json:"today_revenue"`
		AvgSessionMinutes   float64 `json:"avg_session_minutes"`
	}

	scope.Apply(ac.DB.Model(&models.Table{})).Where("status = ?", models.TableStatusAvailable).Count(&stats.TableStats.Available)
	scope.Apply(ac.DB.Model(&models.Table{})).Where("status = ?", models.TableStatusReserved).Count(&stats.TableStats.Reserved)
	scope.Apply(ac.DB.Model(&models.Table{})).Where("status = ?", models.TableStatusOccupied).Count(&stats.TableStats.Occupied)
	scope.Apply(ac.DB.Model(&models.Table{})).Where("status = ?", models.TableStatusMaintenance).Count(&stats.TableStats.Maintenance)

	scope.Apply(ac.DB.Model(&models.Session{})).Where("status = ?", models.SessionStatusActive).Count(&stats.ActiveSessions)
	scope.Apply(ac.DB.Model(&models.QueueEntry{})).Where("status = ?", models.QueueStatusWaiting).Count(&stats.WaitingQueue)
	scope.Apply(ac.DB.Model(&models.Reservation{})).Where("status = ?", models.ReservationStatusPending).Count(&stats.PendingReservations)

	scope.Apply(ac.DB.Model(&models.Bill{})).Where("DATE(created_at) = ?", today).Count(&stats.TodayBills)
	scope.Apply(ac.DB.Model(&models.Bill{})).Where("DATE(created_at) = ?", today).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TodayRevenue)

	var avgMinutes sql.NullFloat64
	scope.Apply(ac.DB.Model(&models.Bill{})).
		Select("AVG(billed_minutes)").Row().Scan(&avgMinutes)
	if avgMinutes.Valid {
		stats.AvgSessionMinutes = avgMinutes.Float64
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
