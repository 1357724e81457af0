package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-commodity-ledger/internal/handler"
	"go-commodity-ledger/internal/middleware"
	"go-commodity-ledger/internal/model"
	"go-commodity-ledger/internal/repository"
	"go-commodity-ledger/internal/service"
	"go-commodity-ledger/internal/ws"
	"go-commodity-ledger/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.User{},
		&model.Commodity{},
		&model.BuyHistory{},
		&model.SellHistory{},
		&model.StockAsset{},
		&model.AuditLog{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	commodityRepo := repository.NewCommodityRepo(db)
	buyRepo := repository.NewBuyHistoryRepo(db)
	sellRepo := repository.NewSellHistoryRepo(db)
	stockRepo := repository.NewStockAssetRepo(db)
	auditRepo := repository.NewAuditLogRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	authService := service.NewAuthService(userRepo)
	commodityService := service.NewCommodityService(commodityRepo)
	buyService := service.NewBuyHistoryService(db, commodityRepo, buyRepo, stockRepo, auditRepo, wsHub)
	sellService := service.NewSellHistoryService(db, commodityRepo, sellRepo, stockRepo, auditRepo, wsHub)
	stockService := service.NewStockAssetService(stockRepo)
	auditService := service.NewAuditLogService(auditRepo)
	dashService := service.NewDashboardService(buyRepo, sellRepo, stockRepo, dashRepo)

	authHandler := handler.NewAuthHandler(authService)
	commodityHandler := handler.NewCommodityHandler(commodityService)
	buyHandler := handler.NewBuyHistoryHandler(buyService)
	sellHandler := handler.NewSellHistoryHandler(sellService)
	stockHandler := handler.NewStockAssetHandler(stockService)
	auditHandler := handler.NewAuditLogHandler(auditService)
	dashHandler := handler.NewDashboardHandler(dashService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Commodity Ledger v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Commodity Routes
	protected.Get("/commodities", commodityHandler.GetAll)
	protected.Get("/commodities/:id", commodityHandler.GetOne)
	protected.Post("/commodities", commodityHandler.Create)
	protected.Put("/commodities/:id", commodityHandler.Update)
	protected.Delete("/commodities/:id", commodityHandler.Delete)

	// Buy History Routes
	protected.Get("/buy-histories", buyHandler.GetAll)
	protected.Get("/buy-histories/commodity/:commodityId", buyHandler.GetByCommodity)
	protected.Get("/buy-histories/:id", buyHandler.GetOne)
	protected.Post("/buy-histories", buyHandler.Store)
	protected.Put("/buy-histories/:id", buyHandler.Update)
	protected.Delete("/buy-histories/:id", buyHandler.Delete)

	// Sell History Routes
	protected.Get("/sell-histories", sellHandler.GetAll)
	protected.Get("/sell-histories/commodity/:commodityId", sellHandler.GetByCommodity)
	protected.Get("/sell-histories/:id", sellHandler.GetOne)
	protected.Post("/sell-histories", sellHandler.Store)
	protected.Put("/sell-histories/:id", sellHandler.Update)
	protected.Delete("/sell-histories/:id", sellHandler.Delete)

	// Stock Asset Routes (read-only, stock only moves through the ledger)
	protected.Get("/stock-assets", stockHandler.GetAll)
	protected.Get("/stock-assets/commodity/:commodityId", stockHandler.GetByCommodity)

	// Audit Log Routes
	protected.Get("/audit-logs", auditHandler.GetAll)

	// Dashboard Routes
	protected.Get("/dashboard/profit-loss", dashHandler.GetProfitLoss)
	protected.Get("/dashboard/stock-assets", dashHandler.GetStockAssets)
	protected.Get("/dashboard/buy-transactions", dashHandler.GetBuyTransactions)
	protected.Get("/dashboard/sell-transactions", dashHandler.GetSellTransactions)
	protected.Get("/dashboard/buy-sell-series", dashHandler.GetBuySellSeries)
	protected.Get("/dashboard/top-commodities", dashHandler.GetTopCommodities)
	protected.Get("/dashboard/recent-transactions", dashHandler.GetRecentTransactions)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default admin user if it doesn't exist yet.
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}

	admin := &model.User{
		Email:    "admin@example.com",
		FullName: "Administrator",
		IsActive: true,
	}
	if err := admin.SetPassword("admin123"); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("Admin user created: admin@example.com / admin123")
	}
}
