package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

// setupControllerDB -> SQLite in-memory + migrate + seed station & game
func setupControllerDB(t *testing.T) (*gorm.DB, models.Station, models.Game) {
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	// Satu koneksi saja: in-memory sqlite hidup per koneksi, koneksi kedua
	// dari pool akan melihat database kosong.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Station{},
		&models.User{},
		&models.Game{},
		&models.Table{},
		&models.Session{},
		&models.Reservation{},
		&models.QueueEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.Bill{},
		&models.Notification{},
		&models.MaintenanceLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	station := models.Station{Name: "Test Hall", Code: "TST"}
	db.Create(&station)
	game := models.Game{StationID: station.ID, Name: "8-Ball"}
	db.Create(&game)

	return db, station, game
}

// withTestScope meniru auth middleware: set scope & role tanpa JWT
func withTestScope(stationID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", role)
		c.Set("scope", models.Scope{StationID: stationID})
		c.Next()
	}
}

func setupTableRouter(db *gorm.DB, stationID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	r.Use(withTestScope(stationID, "admin"))

	tableCtrl := NewTableController(db)
	r.GET("/tables", tableCtrl.GetAllTables)
	r.GET("/tables/:table_id", tableCtrl.GetTableByID)
	r.POST("/tables", tableCtrl.CreateTable)
	r.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	r.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	return r
}

func TestCreateAndListTables(t *testing.T) {
	db, station, game := setupControllerDB(t)
	r := setupTableRouter(db, station.ID)

	payload := map[string]interface{}{
		"table_number":   "A1",
		"game_id":        game.ID,
		"hourly_rate":    60000,
		"per_frame_rate": 25000,
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/tables", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/tables", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "List of tables", response["message"])
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestGetAllTablesRejectsUnknownStatusFilter(t *testing.T) {
	db, station, _ := setupControllerDB(t)
	r := setupTableRouter(db, station.ID)

	req := httptest.NewRequest(http.MethodGet, "/tables?status=broken", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTableCannotChangeStatus(t *testing.T) {
	db, station, game := setupControllerDB(t)
	r := setupTableRouter(db, station.ID)

	table := models.Table{
		StationID:   station.ID,
		GameID:      game.ID,
		TableNumber: "B1",
		Status:      models.TableStatusAvailable,
	}
	db.Create(&table)

	// Status di body diabaikan; hanya nomor dan tarif yang bisa diubah
	payload := map[string]interface{}{
		"table_number": "B2",
		"status":       "occupied",
	}
	body, _ := json.Marshal(payload)

	url := "/tables/" + strconv.Itoa(int(table.ID))
	req := httptest.NewRequest(http.MethodPatch, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Table
	db.First(&got, table.ID)
	assert.Equal(t, "B2", got.TableNumber)
	assert.Equal(t, models.TableStatusAvailable, got.Status)
}

func TestDeleteTableInUse(t *testing.T) {
	db, station, game := setupControllerDB(t)
	r := setupTableRouter(db, station.ID)

	table := models.Table{
		StationID:   station.ID,
		GameID:      game.ID,
		TableNumber: "C1",
		Status:      models.TableStatusOccupied,
	}
	db.Create(&table)

	url := "/tables/" + strconv.Itoa(int(table.ID))
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	db.Model(&table).Update("status", models.TableStatusAvailable)
	req = httptest.NewRequest(http.MethodDelete, url, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTablesScopedToStation(t *testing.T) {
	db, station, game := setupControllerDB(t)

	db.Create(&models.Table{
		StationID:   station.ID,
		GameID:      game.ID,
		TableNumber: "A1",
		Status:      models.TableStatusAvailable,
	})

	// Router dengan scope station lain tidak melihat meja station ini
	r := setupTableRouter(db, station.ID+7)
	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Empty(t, response["data"])
}
