package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"marketplace-api/internal/handler"
	"marketplace-api/internal/middleware"
	"marketplace-api/internal/model"
	"marketplace-api/pkg/config"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/jwtutil"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting marketplace API", cfg.LogConfig()...)

	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.MigrateModels(
		&model.User{},
		&model.Setting{},
		&model.Supplier{},
		&model.Partner{},
		&model.Product{},
		&model.Driver{},
		&model.Merchant{},
		&model.QuotationRequest{},
		&model.QuotationRequestItem{},
		&model.FavoriteSupplier{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.Payment{},
		&model.ShippingCompany{},
		&model.Shipment{},
		&model.ShipmentTracking{},
		&model.ShippingQuote{},
		&model.ShippingDriver{},
		&model.Report{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	jwtutil.Initialize(&cfg.JWT)
	handler.InitAuth(&cfg.Auth)
	prometheus.InitMetrics()

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	registerRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
}

func registerRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	api := e.Group("/api")

	// Public endpoints
	auth := api.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/forgot-password", handler.RequestPasswordReset)
	auth.POST("/reset-password", handler.ResetPassword)
	auth.GET("/profile", handler.GetProfile, middleware.Authenticate)

	api.GET("/shipping/track/:tracking_number", handler.TrackShipment)

	// Account administration, any authenticated role
	users := api.Group("/users", middleware.Authenticate)
	users.GET("", handler.ListUsers)
	users.POST("", handler.Register)
	users.GET("/:id", handler.GetUser)
	users.PUT("/:id", handler.UpdateUser)
	users.DELETE("/:id", handler.DeactivateUser)

	// Per-user preferences, any authenticated role
	settings := api.Group("/settings", middleware.Authenticate)
	settings.GET("", handler.GetSettings)
	settings.POST("", handler.UpdateSettings)

	// Supplier endpoints
	supplier := api.Group("/supplier", middleware.RequireRole(model.RoleSupplier))
	supplier.GET("/profile", handler.GetSupplierProfile)
	supplier.PUT("/profile", handler.UpdateSupplierProfile)
	supplier.GET("/dashboard", handler.GetSupplierDashboard)

	supplier.GET("/products", handler.ListSupplierProducts)
	supplier.POST("/products", handler.CreateProduct)
	supplier.GET("/products/:id", handler.GetSupplierProduct)
	supplier.PUT("/products/:id", handler.UpdateProduct)
	supplier.DELETE("/products/:id", handler.DeleteProduct)

	supplier.GET("/quotations", handler.ListSupplierQuotations)
	supplier.POST("/quotations", handler.CreateQuotation)
	supplier.GET("/quotations/:id", handler.GetSupplierQuotation)
	supplier.PUT("/quotations/:id/status", handler.UpdateQuotationStatus)

	supplier.GET("/orders", handler.ListSupplierOrders)
	supplier.GET("/orders/:id", handler.GetSupplierOrder)
	supplier.PUT("/orders/:id/status", handler.UpdateOrderStatus)

	supplier.GET("/shipments", handler.ListSupplierShipments)

	supplier.GET("/partners", handler.ListPartners)
	supplier.POST("/partners", handler.CreatePartner)
	supplier.PUT("/partners/:id", handler.UpdatePartner)
	supplier.DELETE("/partners/:id", handler.DeletePartner)

	supplier.GET("/drivers", handler.ListDrivers)
	supplier.POST("/drivers", handler.CreateDriver)
	supplier.PUT("/drivers/:id", handler.UpdateDriver)
	supplier.DELETE("/drivers/:id", handler.DeleteDriver)

	supplier.GET("/merchants", handler.ListMerchants)

	supplier.GET("/reports", handler.ListSupplierReports)
	supplier.POST("/reports", handler.CreateSupplierReport)
	supplier.GET("/reports/:id", handler.GetSupplierReport)

	// Merchant endpoints
	merchant := api.Group("/merchant", middleware.RequireRole(model.RoleMerchant))
	merchant.GET("/profile", handler.GetMerchantProfile)
	merchant.PUT("/profile", handler.UpdateMerchantProfile)
	merchant.GET("/dashboard", handler.GetMerchantDashboard)

	merchant.GET("/suppliers", handler.ListSuppliers)
	merchant.GET("/suppliers/:id/products", handler.ListSupplierCatalog)
	merchant.GET("/products/search", handler.SearchProducts)

	merchant.GET("/favorites", handler.ListFavoriteSuppliers)
	merchant.POST("/favorites", handler.AddFavoriteSupplier)
	merchant.DELETE("/favorites/:supplier_id", handler.RemoveFavoriteSupplier)

	merchant.GET("/quotation-requests", handler.ListQuotationRequests)
	merchant.POST("/quotation-requests", handler.CreateQuotationRequest)
	merchant.GET("/quotation-requests/:id", handler.GetQuotationRequest)
	merchant.PUT("/quotation-requests/:id/status", handler.UpdateQuotationRequestStatus)

	merchant.GET("/quotations", handler.ListReceivedQuotations)
	merchant.GET("/quotations/:id", handler.GetReceivedQuotation)
	merchant.POST("/quotations/:id/accept", handler.AcceptQuotation)
	merchant.POST("/quotations/:id/reject", handler.RejectQuotation)

	merchant.GET("/orders", handler.ListMerchantOrders)
	merchant.POST("/orders", handler.CreateOrder)
	merchant.GET("/orders/:id", handler.GetMerchantOrder)
	merchant.POST("/orders/:id/cancel", handler.CancelOrder)
	merchant.GET("/orders/:id/payments", handler.ListOrderPayments)
	merchant.POST("/orders/:id/payments", handler.CreatePayment)
	merchant.GET("/payments", handler.ListMerchantPayments)

	merchant.GET("/shipping-companies", handler.ListShippingCompanies)
	merchant.GET("/shipping-companies/:id", handler.GetShippingCompany)
	merchant.GET("/shipping-quotes", handler.ListMerchantShippingQuotes)
	merchant.POST("/shipping-quotes", handler.RequestShippingQuote)
	merchant.PUT("/shipping-quotes/:id/respond", handler.RespondToShippingQuote)
	merchant.GET("/shipments", handler.ListMerchantShipments)

	merchant.GET("/reports", handler.ListMerchantReports)
	merchant.POST("/reports", handler.CreateMerchantReport)
	merchant.GET("/reports/:id", handler.GetMerchantReport)

	// Shipping company endpoints
	shipping := api.Group("/shipping", middleware.RequireRole(model.RoleShipping))
	shipping.GET("/profile", handler.GetShippingProfile)
	shipping.PUT("/profile", handler.UpdateShippingProfile)
	shipping.GET("/dashboard", handler.GetShippingDashboard)

	shipping.GET("/shipments", handler.ListShipments)
	shipping.POST("/shipments", handler.CreateShipment)
	shipping.GET("/shipments/:id", handler.GetShipment)
	shipping.PUT("/shipments/:id/status", handler.UpdateShipmentStatus)
	shipping.POST("/shipments/:id/tracking", handler.AddTrackingEvent)

	shipping.GET("/quotes", handler.ListShippingQuotes)
	shipping.POST("/quotes", handler.CreateShippingQuote)
	shipping.PUT("/quotes/:id/send", handler.SendShippingQuote)

	shipping.GET("/drivers", handler.ListShippingDrivers)
	shipping.POST("/drivers", handler.CreateShippingDriver)
	shipping.PUT("/drivers/:id", handler.UpdateShippingDriver)
	shipping.DELETE("/drivers/:id", handler.DeleteShippingDriver)
}
