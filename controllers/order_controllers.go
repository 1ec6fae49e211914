package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

// OrderController melayani cart pendamping session/queue entry. Order dibuat
// oleh session start / enqueue; di sini hanya baca dan tambah item.
type OrderController struct {
	DB *gorm.DB
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db}
}

// GetAllOrders -> list orders beserta items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	q := getScope(c).Apply(oc.DB).Preload("OrderItems")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID := c.Param("order_id")

	var order models.Order
	if err := getScope(c).Apply(oc.DB).Preload("OrderItems").First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// AddOrderItems -> tambah item ke order yang masih pending
func (oc *OrderController) AddOrderItems(c *gin.Context) {
	orderID, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	type itemReq struct {
		Name     string  `json:"name" binding:"required"`
		Quantity int     `json:"quantity" binding:"required"`
		Price    float64 `json:"price"`
		Notes    string  `json:"notes"`
	}
	var body struct {
		Items []itemReq `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := getScope(c).Apply(oc.DB).First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if order.Status != models.OrderStatusPending {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("order is not pending"))
		return
	}

	tx := oc.DB.Begin()
	total := order.TotalAmount
	for _, item := range body.Items {
		if item.Quantity <= 0 {
			continue
		}
		total += float64(item.Quantity) * item.Price
		orderItem := models.OrderItem{
			OrderID:   order.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Notes:     item.Notes,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	order.TotalAmount = total
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order items added", order)
}
