package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

// CartItem adalah line item makanan/minuman yang dititipkan ke session atau
// queue entry.
type CartItem struct {
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes"`
}

// BillingService menghitung tagihan saat session ditutup. Tidak ada payment
// processing di sini; bill hanya dicatat.
type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// CreateBill menghitung menit tertagih (durasi fix kalau ada, kalau tidak
// elapsed wall clock), menjumlahkan order pending milik session, dan
// menyimpan bill. Unique index di bills.session_id menolak bill kedua untuk
// session yang sama.
func (s *BillingService) CreateBill(tx *gorm.DB, scope models.Scope, session *models.Session, table *models.Table, endedAt time.Time) (*models.Bill, error) {
	minutes := billedMinutes(session, endedAt)

	var tableCharge float64
	if session.BookingType == models.BookingFrame && session.FrameCount != nil {
		tableCharge = float64(*session.FrameCount) * table.PerFrameRate
	} else {
		tableCharge = table.HourlyRate * float64(minutes) / 60
	}

	var orders []models.Order
	if err := scope.Apply(tx).
		Where("session_id = ? AND status = ?", session.ID, models.OrderStatusPending).
		Preload("OrderItems").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	var orderTotal float64
	for _, o := range orders {
		var subTotal float64
		for _, item := range o.OrderItems {
			subTotal += float64(item.Quantity) * item.Price
		}
		orderTotal += subTotal
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"status":       models.OrderStatusBilled,
				"total_amount": subTotal,
			}).Error; err != nil {
			return nil, err
		}
	}

	bill := models.Bill{
		StationID:     scope.StationID,
		SessionID:     session.ID,
		BilledMinutes: minutes,
		TableCharge:   tableCharge,
		OrderTotal:    orderTotal,
		TotalAmount:   tableCharge + orderTotal,
	}
	if err := tx.Create(&bill).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Bill %d created for session %d: Rp %s",
		bill.ID, session.ID, utils.FormatCurrency(bill.TotalAmount))
	realtime.BroadcastStaffNotification(
		fmt.Sprintf("Bill for table %s: Rp %s", table.TableNumber, utils.FormatCurrency(bill.TotalAmount)))

	return &bill, nil
}

// billedMinutes: fixed duration kalau rencana akhir ada, selain itu elapsed.
func billedMinutes(session *models.Session, endedAt time.Time) int {
	if session.EndTime != nil {
		return int(session.EndTime.Sub(session.StartTime).Minutes())
	}
	minutes := int(endedAt.Sub(session.StartTime).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
