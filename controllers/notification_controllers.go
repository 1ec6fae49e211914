package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	var notifs []models.Notification
	if err := getScope(c).Apply(nc.DB).Order("created_at DESC").Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// CreateNotification -> broadcast atau specific user
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	type reqBody struct {
		UserID  *uint  `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notif := models.Notification{
		StationID: getScope(c).StationID,
		Message:   body.Message,
	}
	if body.Title != "" {
		notif.Title = &body.Title
	}
	if body.UserID != nil {
		notif.UserID = body.UserID
	}

	if err := nc.DB.Create(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	realtime.BroadcastStaffNotification(notif.Message)
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

// MarkNotificationRead
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	notifID, ok := paramID(c, "notif_id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := getScope(c).Apply(nc.DB).First(&notif, notifID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	now := time.Now()
	notif.ReadAt = &now
	if err := nc.DB.Save(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked read", notif)
}

// DeleteNotification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	notifID, ok := paramID(c, "notif_id")
	if !ok {
		return
	}

	if err := getScope(c).Apply(nc.DB).Delete(&models.Notification{}, notifID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": notifID})
}
