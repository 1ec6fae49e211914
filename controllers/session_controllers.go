package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/services"
	"github.com/danuartha/biliard-app/utils"
)

type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
}

func NewSessionController(db *gorm.DB, sessions *services.SessionService) *SessionController {
	return &SessionController{DB: db, Sessions: sessions}
}

// StartSession -> buka session di satu meja
func (sc *SessionController) StartSession(c *gin.Context) {
	var req struct {
		TableID             uint                 `json:"table_id" binding:"required"`
		GameID              uint                 `json:"game_id" binding:"required"`
		CustomerName        string               `json:"customer_name" binding:"required"`
		Intent              models.BookingIntent `json:"intent" binding:"required"`
		ReservationID       *uint                `json:"reservation_id"`
		CartItems           []services.CartItem  `json:"cart_items"`
		AcknowledgeWarnings bool                 `json:"acknowledge_warnings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	override := services.OverrideNone
	if req.AcknowledgeWarnings {
		override = services.OverrideAcknowledgeWarnings
	}

	session, order, err := sc.Sessions.Start(getScope(c), services.StartRequest{
		TableID:       req.TableID,
		GameID:        req.GameID,
		CustomerName:  req.CustomerName,
		Intent:        req.Intent,
		ReservationID: req.ReservationID,
		CartItems:     req.CartItems,
		Override:      override,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Session started", gin.H{
		"session": session,
		"order":   order,
	})
}

// StopSession -> tutup session, bagi meja ke antrean, buat bill
func (sc *SessionController) StopSession(c *gin.Context) {
	sessionID, ok := paramID(c, "session_id")
	if !ok {
		return
	}

	var req struct {
		SkipBill bool `json:"skip_bill"`
	}
	// Body opsional
	_ = c.ShouldBindJSON(&req)

	result, err := sc.Sessions.Stop(getScope(c), sessionID, req.SkipBill)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session stopped", result)
}

// AutoReleaseSession -> dipanggil trigger eksternal saat waktu habis
func (sc *SessionController) AutoReleaseSession(c *gin.Context) {
	sessionID, ok := paramID(c, "session_id")
	if !ok {
		return
	}

	var req struct {
		CartItems []services.CartItem `json:"cart_items"`
	}
	// Body opsional
	_ = c.ShouldBindJSON(&req)

	result, err := sc.Sessions.AutoRelease(getScope(c), sessionID, req.CartItems)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session auto-released", result)
}

// UpdateSession -> ubah frame/durasi/cart selama aktif
func (sc *SessionController) UpdateSession(c *gin.Context) {
	sessionID, ok := paramID(c, "session_id")
	if !ok {
		return
	}

	var req struct {
		FrameCount      *int                `json:"frame_count"`
		DurationMinutes *int                `json:"duration_minutes"`
		CartItems       []services.CartItem `json:"cart_items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.Update(getScope(c), sessionID, services.SessionPatch{
		FrameCount:      req.FrameCount,
		DurationMinutes: req.DurationMinutes,
		CartItems:       req.CartItems,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session updated", session)
}

// GetAllSessions -> list session station, opsional filter status
func (sc *SessionController) GetAllSessions(c *gin.Context) {
	q := getScope(c).Apply(sc.DB).Preload("Table")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var sessions []models.Session
	if err := q.Order("created_at DESC").Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sessions", sessions)
}

// GetSessionByID -> detail satu session
func (sc *SessionController) GetSessionByID(c *gin.Context) {
	sessionID := c.Param("session_id")

	var session models.Session
	if err := getScope(c).Apply(sc.DB).Preload("Table").First(&session, sessionID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}
