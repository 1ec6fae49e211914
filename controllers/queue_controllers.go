package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/services"
	"github.com/danuartha/biliard-app/utils"
)

type QueueController struct {
	DB    *gorm.DB
	Queue *services.QueueService
}

func NewQueueController(db *gorm.DB, queue *services.QueueService) *QueueController {
	return &QueueController{DB: db, Queue: queue}
}

// Enqueue -> masukkan customer ke antrean
func (qc *QueueController) Enqueue(c *gin.Context) {
	var req struct {
		CustomerName     string               `json:"customer_name" binding:"required"`
		GameID           uint                 `json:"game_id" binding:"required"`
		PreferredTableID *uint                `json:"preferred_table_id"`
		Intent           models.BookingIntent `json:"intent" binding:"required"`
		CartItems        []services.CartItem  `json:"cart_items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, order, err := qc.Queue.Enqueue(getScope(c), services.EnqueueRequest{
		CustomerName:     req.CustomerName,
		GameID:           req.GameID,
		PreferredTableID: req.PreferredTableID,
		Intent:           req.Intent,
		CartItems:        req.CartItems,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Queue entry created", gin.H{
		"entry": entry,
		"order": order,
	})
}

// Assign -> staff menempatkan entry ke meja pilihan
func (qc *QueueController) Assign(c *gin.Context) {
	entryID, ok := paramID(c, "entry_id")
	if !ok {
		return
	}

	var req struct {
		TableID             uint `json:"table_id" binding:"required"`
		AcknowledgeWarnings bool `json:"acknowledge_warnings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	override := services.OverrideNone
	if req.AcknowledgeWarnings {
		override = services.OverrideAcknowledgeWarnings
	}

	entry, err := qc.Queue.Assign(getScope(c), entryID, req.TableID, override)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Queue entry seated", entry)
}

// AutoNext -> seat entry paling awal yang feasible
func (qc *QueueController) AutoNext(c *gin.Context) {
	var req struct {
		GameID *uint `json:"game_id"`
	}
	// Body opsional; tanpa body berarti tanpa filter game.
	_ = c.ShouldBindJSON(&req)

	entry, err := qc.Queue.AutoNext(getScope(c), req.GameID, services.OverrideNone)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Queue entry seated", entry)
}

// Complete -> entry seated selesai dilayani
func (qc *QueueController) Complete(c *gin.Context) {
	entryID, ok := paramID(c, "entry_id")
	if !ok {
		return
	}

	entry, err := qc.Queue.Complete(getScope(c), entryID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue entry served", entry)
}

// Cancel -> batalkan entry (waiting maupun seated)
func (qc *QueueController) Cancel(c *gin.Context) {
	entryID, ok := paramID(c, "entry_id")
	if !ok {
		return
	}

	entry, err := qc.Queue.Cancel(getScope(c), entryID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue entry cancelled", entry)
}

// NoShow -> entry seated tidak datang; meja dibebaskan
func (qc *QueueController) NoShow(c *gin.Context) {
	entryID, ok := paramID(c, "entry_id")
	if !ok {
		return
	}

	entry, err := qc.Queue.Cancel(getScope(c), entryID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue entry marked no-show", entry)
}

// Clear -> batalkan semua waiting entry station
func (qc *QueueController) Clear(c *gin.Context) {
	cancelled, err := qc.Queue.Clear(getScope(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue cleared", gin.H{"cancelled": cancelled})
}

// GetQueue -> list antrean, opsional filter status/game
func (qc *QueueController) GetQueue(c *gin.Context) {
	q := getScope(c).Apply(qc.DB).Preload("Game")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if gameID := c.Query("game_id"); gameID != "" {
		q = q.Where("game_id = ?", gameID)
	}

	var entries []models.QueueEntry
	if err := q.Order("created_at ASC").Find(&entries).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue entries", entries)
}
