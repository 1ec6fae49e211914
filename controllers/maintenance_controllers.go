package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

type MaintenanceController struct {
	DB *gorm.DB
}

func NewMaintenanceController(db *gorm.DB) *MaintenanceController {
	return &MaintenanceController{DB: db}
}

// GetAllMaintenanceLogs
func (mc *MaintenanceController) GetAllMaintenanceLogs(c *gin.Context) {
	var logs []models.MaintenanceLog
	if err := getScope(c).Apply(mc.DB).Preload("Table").Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All maintenance logs", logs)
}

// OpenMaintenance -> tandai meja maintenance; hanya meja yang tidak sedang
// terpakai yang bisa masuk maintenance
func (mc *MaintenanceController) OpenMaintenance(c *gin.Context) {
	var body struct {
		TableID     uint   `json:"table_id" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope := getScope(c)
	userID, _ := c.Get("user_id")
	reporterID, _ := userID.(uint)

	var table models.Table
	if err := scope.Apply(mc.DB).First(&table, body.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if table.Status != models.TableStatusAvailable {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("table is %s, not available", table.Status))
		return
	}

	logEntry := models.MaintenanceLog{
		StationID:   scope.StationID,
		TableID:     table.ID,
		ReportedBy:  reporterID,
		Description: body.Description,
		Status:      models.MaintenanceStatusOpen,
	}

	tx := mc.DB.Begin()
	if err := tx.Create(&logEntry).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	table.Status = models.TableStatusMaintenance
	if err := tx.Save(&table).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("Table %d under maintenance: %s", table.ID, body.Description)
	utils.RespondJSON(c, http.StatusCreated, "Maintenance log created", logEntry)
}

// CloseMaintenance -> tutup log dan kembalikan meja ke available
func (mc *MaintenanceController) CloseMaintenance(c *gin.Context) {
	logID, ok := paramID(c, "log_id")
	if !ok {
		return
	}

	var logEntry models.MaintenanceLog
	if err := getScope(c).Apply(mc.DB).First(&logEntry, logID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if logEntry.Status != models.MaintenanceStatusOpen {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("maintenance log is not open"))
		return
	}

	now := time.Now()
	logEntry.Status = models.MaintenanceStatusClosed
	logEntry.ClosedAt = &now

	tx := mc.DB.Begin()
	if err := tx.Save(&logEntry).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Model(&models.Table{}).Where("id = ?", logEntry.TableID).
		Update("status", models.TableStatusAvailable).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var table models.Table
	if err := mc.DB.First(&table, logEntry.TableID).Error; err == nil {
		realtime.BroadcastTableUpdate(table)
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance log closed", logEntry)
}
