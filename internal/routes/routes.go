package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/listado/internal/config"
	"github.com/example/listado/internal/handlers"
	"github.com/example/listado/internal/lifecycle"
	"github.com/example/listado/internal/middleware"
	"github.com/example/listado/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	manager := lifecycle.NewManager(db)
	whatsapp := services.NewWhatsAppService(cfg.WhatsAppNumber)

	authHandler := handlers.NewAuthHandler(db, cfg)
	listHandler := handlers.NewListHandler(db, manager)
	productHandler := handlers.NewProductHandler(db, manager)
	orderHandler := handlers.NewOrderHandler(db, manager)
	catalogHandler := handlers.NewCatalogHandler(db)
	shareHandler := handlers.NewShareHandler(db, whatsapp)
	uploadHandler := handlers.NewUploadHandler(cfg)
	dashboardHandler := handlers.NewDashboardHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public catalog
	catalog := api.Group("/catalog")
	catalog.Get("/", catalogHandler.ListPublishedLists)
	catalog.Get("/:id", catalogHandler.GetCatalogList)

	// Static serving for uploaded images
	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// Protected admin routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	lists := protected.Group("/lists")
	lists.Get("/", listHandler.ListLists)
	lists.Post("/", listHandler.CreateList)
	lists.Get("/:id", listHandler.GetList)
	lists.Put("/:id", listHandler.UpdateList)
	lists.Delete("/:id", listHandler.DeleteList)
	lists.Post("/:id/publish", listHandler.PublishList)
	lists.Post("/:id/close", listHandler.CloseList)
	lists.Post("/:id/archive", listHandler.ArchiveList)

	lists.Get("/:listId/products", productHandler.ListProducts)
	lists.Post("/:listId/products", productHandler.CreateProduct)

	products := protected.Group("/products")
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)
	products.Post("/:id/ready", productHandler.MarkReady)
	products.Post("/:id/publish", productHandler.Publish)
	products.Post("/:id/hide", productHandler.Hide)

	protected.Post("/pricing/preview", productHandler.PreviewPricing)

	orders := protected.Group("/orders")
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id", orderHandler.UpdateOrder)
	orders.Patch("/:id/status", orderHandler.SetStatus)
	orders.Post("/:id/items", orderHandler.AddItem)
	orders.Put("/:id/items/:itemId", orderHandler.UpdateItem)
	orders.Delete("/:id/items/:itemId", orderHandler.RemoveItem)

	share := protected.Group("/share")
	share.Get("/lists/:id", shareHandler.ShareList)
	share.Get("/orders/:id", shareHandler.ShareOrder)

	protected.Post("/uploads", uploadHandler.UploadImage)
	protected.Delete("/uploads", uploadHandler.DeleteImage)

	protected.Get("/dashboard/stats", dashboardHandler.Stats)
	protected.Get("/dashboard/recent-orders", dashboardHandler.RecentOrders)
}
