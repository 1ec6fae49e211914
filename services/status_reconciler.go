package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/realtime"
	"github.com/danuartha/biliard-app/utils"
)

// StatusReconciler menyapu drift antara status meja yang disimpan dan
// kenyataan (ada/tidaknya session aktif atau queue entry seated). Status
// meja sengaja disimpan, bukan derived saat read, jadi kegagalan parsial di
// tengah urutan stop/start bisa meninggalkan meja "reserved" yatim;
// reconciler mengembalikannya ke available.
type StatusReconciler struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewStatusReconciler(db *gorm.DB) *StatusReconciler {
	return &StatusReconciler{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Minute,
	}
}

func (sr *StatusReconciler) Start() {
	go func() {
		ticker := time.NewTicker(sr.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sr.reconcile()
			case <-sr.StopChan:
				return
			}
		}
	}()
}

func (sr *StatusReconciler) Stop() {
	close(sr.StopChan)
}

func (sr *StatusReconciler) reconcile() {
	var tables []models.Table
	if err := sr.DB.
		Where("status IN ?", []string{models.TableStatusReserved, models.TableStatusOccupied}).
		Find(&tables).Error; err != nil {
		utils.ErrorLogger.Printf("Status reconciler: fetching tables failed: %v", err)
		return
	}

	for _, table := range tables {
		var active int64
		if err := sr.DB.Model(&models.Session{}).
			Where("table_id = ? AND status = ?", table.ID, models.SessionStatusActive).
			Count(&active).Error; err != nil {
			utils.ErrorLogger.Printf("Status reconciler: counting sessions for table %d failed: %v", table.ID, err)
			continue
		}
		if active > 0 {
			continue
		}

		var seated int64
		if err := sr.DB.Model(&models.QueueEntry{}).
			Where("seated_table_key = ? AND status = ?", table.ID, models.QueueStatusSeated).
			Count(&seated).Error; err != nil {
			utils.ErrorLogger.Printf("Status reconciler: counting queue entries for table %d failed: %v", table.ID, err)
			continue
		}
		if seated > 0 {
			continue
		}

		utils.ErrorLogger.Printf("Table %d stuck in %q with no active session or seated entry, resetting to available",
			table.ID, table.Status)
		table.Status = models.TableStatusAvailable
		if err := sr.DB.Save(&table).Error; err != nil {
			utils.ErrorLogger.Printf("Status reconciler: resetting table %d failed: %v", table.ID, err)
			continue
		}
		realtime.BroadcastTableUpdate(table)
	}
}
