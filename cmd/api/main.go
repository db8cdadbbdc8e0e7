package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pegasusmrx/store-backend/internal/config"
	"github.com/pegasusmrx/store-backend/internal/handlers"
	"github.com/pegasusmrx/store-backend/internal/media"
	"github.com/pegasusmrx/store-backend/internal/middleware"
	"github.com/pegasusmrx/store-backend/internal/orders"
	"github.com/pegasusmrx/store-backend/internal/services/mailer"
	"github.com/pegasusmrx/store-backend/internal/services/oxapay"
	"github.com/pegasusmrx/store-backend/internal/store"
	"github.com/pegasusmrx/store-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	db := store.New(cfg.DataFile, cfg.BaseFile, zlog)
	assets := media.New(cfg.UploadDir, cfg.MediaFallback, zlog)

	payments := oxapay.NewService(
		cfg.OxapayMerchant,
		cfg.OxapayBaseURL,
		cfg.BaseURL+"/api/checkout/callback",
		cfg.FrontendURL+"/order/success",
	)

	mail := mailer.NewSMTP(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
		cfg.SMTPFrom, "Pegasus MRX", cfg.SMTPFrom, zlog,
	)

	lifecycle := orders.NewManager(db, payments, mail, zlog)

	authH := &handlers.AuthHandler{
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecret,
		Expires:      cfg.JWTExpiresMin,
		Log:          zlog,
	}
	orderH := handlers.NewOrderHandler(db, lifecycle, zlog)
	productH := handlers.NewProductHandler(db, zlog)
	categoryH := handlers.NewCategoryHandler(db)
	reviewH := handlers.NewReviewHandler(db)
	supportH := handlers.NewSupportHandler(db)
	profileH := handlers.NewProfileHandler(db)
	mediaH := handlers.NewMediaHandler(assets, zlog)
	analyticsH := handlers.NewAnalyticsHandler(db, zlog)
	statsH := handlers.NewStatsHandler(db)
	adminH := handlers.NewAdminHandler(db, cfg.UploadDir, zlog)

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // media uploads and backup archives
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length, Content-Disposition",
		AllowCredentials: true,
	}))

	app.Get("/uploads/:filename", mediaH.Serve)

	api := app.Group("/api")

	// public storefront
	api.Get("/products", productH.List)
	api.Get("/categories", categoryH.List)
	api.Get("/profile", profileH.Get)
	api.Get("/reviews", reviewH.List)
	api.Post("/reviews", reviewH.Create)
	api.Post("/orders", orderH.Create)
	api.Get("/support", supportH.Get)
	api.Post("/support", supportH.Create)
	api.Put("/support", supportH.Update)
	api.Post("/analytics/visit", analyticsH.Track)

	// payment processor webhook
	api.Post("/checkout/callback", orderH.Callback)

	// admin session
	api.Post("/admin/login", authH.Login)
	api.Post("/admin/logout", authH.Logout)

	// protected (admin cookie)
	admin := api.Group("/", middleware.AdminFromCookie(cfg.JWTSecret))

	admin.Get("/orders", orderH.List)
	admin.Delete("/orders/:id", orderH.Delete)
	admin.Delete("/admin/orders/clear", orderH.Clear)
	admin.Post("/admin/orders/sync", orderH.Sync)

	admin.Post("/products", productH.Create)
	admin.Put("/products", productH.Update)
	admin.Delete("/products", productH.Delete)

	admin.Post("/categories", categoryH.Create)
	admin.Delete("/categories", categoryH.Delete)

	admin.Put("/profile", profileH.Update)

	admin.Post("/admin/reviews", reviewH.AdminCreate)
	admin.Delete("/admin/reviews", reviewH.Delete)

	admin.Delete("/support", supportH.Delete)

	admin.Post("/admin/upload", mediaH.Upload)
	admin.Get("/media", mediaH.List)
	admin.Delete("/media", mediaH.Delete)

	admin.Get("/analytics", analyticsH.List)
	admin.Get("/analytics/live", analyticsH.Live)
	admin.Post("/analytics/reset", analyticsH.Reset)

	admin.Get("/stats", statsH.Get)
	admin.Get("/finance", statsH.Finance)

	admin.Post("/admin/reset", adminH.Reset)
	admin.Post("/admin/save-default", adminH.SaveDefault)
	admin.Get("/admin/backup/export", adminH.BackupExport)
	admin.Post("/admin/backup/import", adminH.BackupImport)

	zlog.Info("listening", zap.String("port", cfg.AppPort))
	log.Fatal(app.Listen(":" + cfg.AppPort))
}
