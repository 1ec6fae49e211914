package main

import (
	"log"
	"os"

	"github.com/danuartha/biliard-app/config"
	"github.com/danuartha/biliard-app/database"
	"github.com/danuartha/biliard-app/middlewares"
	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/router"
	"github.com/danuartha/biliard-app/services"
	"github.com/danuartha/biliard-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Initialize logger
	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Sweep berkala untuk memulihkan status meja yang drift
	reconciler := services.NewStatusReconciler(db)
	reconciler.Start()
	defer reconciler.Stop()

	// Bersihkan token blacklist yang sudah kadaluarsa
	go utils.CleanupBlacklist()

	// Setup router
	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
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
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Trigger hanya terpasang di MySQL; di SQLite dilewati saja
	if db.Dialector.Name() == "mysql" {
		if err := database.ExecuteTriggers(db); err != nil {
			utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
		}
	}
}
