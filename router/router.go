package router

import (
	"github.com/danuartha/biliard-app/controllers"
	"github.com/danuartha/biliard-app/middlewares"
	"github.com/danuartha/biliard-app/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Services dipakai bersama oleh beberapa controller
	resolver := services.NewConflictResolver()
	billing := services.NewBillingService(db)
	queueSvc := services.NewQueueService(db, resolver)
	sessionSvc := services.NewSessionService(db, resolver, queueSvc, billing)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	gameCtrl := controllers.NewGameController(db)
	sessionCtrl := controllers.NewSessionController(db, sessionSvc)
	queueCtrl := controllers.NewQueueController(db, queueSvc)
	reservationCtrl := controllers.NewReservationController(db, resolver)
	orderCtrl := controllers.NewOrderController(db)
	maintenanceCtrl := controllers.NewMaintenanceController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// WebSocket endpoint dengan middleware khusus (token via query string)
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.RealtimeHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/users", middlewares.RequireRole("admin"), userCtrl.GetAllUsers)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.POST("/tables", middlewares.RequireRole("admin"), tableCtrl.CreateTable)
	auth.PATCH("/tables/:table_id", middlewares.RequireRole("admin"), tableCtrl.UpdateTable)
	auth.DELETE("/tables/:table_id", middlewares.RequireRole("admin"), tableCtrl.DeleteTable)

	// GAMES
	auth.GET("/games", gameCtrl.GetAllGames)
	auth.POST("/games", middlewares.RequireRole("admin"), gameCtrl.CreateGame)
	auth.PATCH("/games/:game_id", middlewares.RequireRole("admin"), gameCtrl.UpdateGame)
	auth.DELETE("/games/:game_id", middlewares.RequireRole("admin"), gameCtrl.DeleteGame)

	// SESSIONS (staff/marker/admin)
	auth.GET("/sessions", sessionCtrl.GetAllSessions)
	auth.GET("/sessions/:session_id", sessionCtrl.GetSessionByID)
	auth.POST("/sessions", sessionCtrl.StartSession)
	auth.POST("/sessions/:session_id/stop", sessionCtrl.StopSession)
	auth.POST("/sessions/:session_id/auto-release", sessionCtrl.AutoReleaseSession)
	auth.PATCH("/sessions/:session_id", sessionCtrl.UpdateSession)

	// QUEUE
	auth.GET("/queue", queueCtrl.GetQueue)
	auth.POST("/queue", queueCtrl.Enqueue)
	auth.POST("/queue/:entry_id/assign", queueCtrl.Assign)
	auth.POST("/queue/next", queueCtrl.AutoNext)
	auth.POST("/queue/:entry_id/complete", queueCtrl.Complete)
	auth.POST("/queue/:entry_id/cancel", queueCtrl.Cancel)
	auth.POST("/queue/:entry_id/no-show", queueCtrl.NoShow)
	auth.DELETE("/queue", middlewares.RequireRole("admin"), queueCtrl.Clear)

	// RESERVATIONS
	auth.GET("/reservations", reservationCtrl.GetAllReservations)
	auth.POST("/reservations", reservationCtrl.CreateReservation)
	auth.POST("/reservations/:reservation_id/auto-assign", reservationCtrl.AutoAssignReservation)
	auth.POST("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)
	auth.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservation)

	// ORDERS (pesanan pendamping sesi/antrian)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.POST("/orders/:order_id/items", orderCtrl.AddOrderItems)

	// MAINTENANCE LOGS
	auth.GET("/maintenance-logs", maintenanceCtrl.GetAllMaintenanceLogs)
	auth.POST("/maintenance-logs", maintenanceCtrl.OpenMaintenance)
	auth.POST("/maintenance-logs/:log_id/close", maintenanceCtrl.CloseMaintenance)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.POST("/notifications", notificationCtrl.CreateNotification)
	auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkNotificationRead)
	auth.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

	// ADMIN
	auth.GET("/dashboard/stats", middlewares.RequireRole("admin"), adminCtrl.GetDashboardStats)

	return r
}
