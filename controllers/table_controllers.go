package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber  string  `json:"table_number" binding:"required"`
		GameID       uint    `json:"game_id" binding:"required"`
		HourlyRate   float64 `json:"hourly_rate"`
		PerFrameRate float64 `json:"per_frame_rate"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope := getScope(c)

	var game models.Game
	if err := scope.Apply(tc.DB).First(&game, req.GameID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("game not found"))
		return
	}

	table := models.Table{
		StationID:    scope.StationID,
		GameID:       req.GameID,
		TableNumber:  req.TableNumber,
		Status:       models.TableStatusAvailable,
		HourlyRate:   req.HourlyRate,
		PerFrameRate: req.PerFrameRate,
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)

	utils.InfoLogger.Printf("New table created: %s (game=%d)", table.TableNumber, table.GameID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> seluruh meja milik station, opsional filter status
func (tc *TableController) GetAllTables(c *gin.Context) {
	scope := getScope(c)

	q := scope.Apply(tc.DB).Preload("Game")
	if status := c.Query("status"); status != "" {
		if !models.ValidTableStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown table status %q", status))
			return
		}
		q = q.Where("status = ?", status)
	}

	var tables []models.Table
	if err := q.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := getScope(c).Apply(tc.DB).Preload("Game").First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> ubah nomor/tarif meja. Status tidak bisa diubah dari sini;
// status hanya dimutasi oleh session/queue/maintenance flow.
func (tc *TableController) UpdateTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var body struct {
		TableNumber  *string  `json:"table_number"`
		HourlyRate   *float64 `json:"hourly_rate"`
		PerFrameRate *float64 `json:"per_frame_rate"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := getScope(c).Apply(tc.DB).First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.TableNumber != nil {
		table.TableNumber = *body.TableNumber
	}
	if body.HourlyRate != nil {
		table.HourlyRate = *body.HourlyRate
	}
	if body.PerFrameRate != nil {
		table.PerFrameRate = *body.PerFrameRate
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> menghapus meja yang tidak sedang terpakai
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := getScope(c).Apply(tc.DB).First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.Status == models.TableStatusOccupied || table.Status == models.TableStatusReserved {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("table is in use"))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}
