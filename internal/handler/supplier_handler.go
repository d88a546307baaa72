package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-api/internal/middleware"
	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

func supplierID(c echo.Context) uint {
	return c.Get(middleware.ContextSupplierID).(uint)
}

// GetSupplierProfile returns the authenticated supplier's company profile
func GetSupplierProfile(c echo.Context) error {
	db := database.GetDB()

	var supplier model.Supplier
	if err := db.First(&supplier, supplierID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier profile not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"supplier": supplier})
}

// UpdateSupplierProfile updates the authenticated supplier's company profile
func UpdateSupplierProfile(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var supplier model.Supplier
	if err := db.First(&supplier, supplierID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier profile not found"})
	}

	var req struct {
		CompanyName     *string `json:"company_name"`
		CompanyAddress  *string `json:"company_address"`
		TaxNumber       *string `json:"tax_number"`
		BusinessLicense *string `json:"business_license"`
		Description     *string `json:"description"`
		LogoURL         *string `json:"logo_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.CompanyAddress != nil {
		updates["company_address"] = *req.CompanyAddress
	}
	if req.TaxNumber != nil {
		updates["tax_number"] = *req.TaxNumber
	}
	if req.BusinessLicense != nil {
		updates["business_license"] = *req.BusinessLicense
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := db.Model(&supplier).Updates(updates).Error; err != nil {
			log.Error("Failed to update supplier profile", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"supplier": supplier})
}

// GetSupplierDashboard returns aggregate counts for the supplier landing page
func GetSupplierDashboard(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	sid := supplierID(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var productCount, activeProductCount int64
	db.Model(&model.Product{}).Where("supplier_id = ?", sid).Count(&productCount)
	db.Model(&model.Product{}).Where("supplier_id = ? AND is_active = ?", sid, true).Count(&activeProductCount)

	var quotationCount, pendingQuotations int64
	db.Model(&model.Quotation{}).Where("supplier_id = ?", sid).Count(&quotationCount)
	db.Model(&model.Quotation{}).Where("supplier_id = ? AND status = ?", sid, model.QuotationSent).Count(&pendingQuotations)

	var orderCount, pendingOrders int64
	db.Model(&model.PurchaseOrder{}).Where("supplier_id = ?", sid).Count(&orderCount)
	db.Model(&model.PurchaseOrder{}).Where("supplier_id = ? AND status = ?", sid, model.OrderPending).Count(&pendingOrders)

	var orders []model.PurchaseOrder
	if err := db.Where("supplier_id = ? AND status = ?", sid, model.OrderDelivered).Find(&orders).Error; err != nil {
		log.Error("Failed to load delivered orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": echo.Map{
			"total":  productCount,
			"active": activeProductCount,
		},
		"quotations": echo.Map{
			"total":             quotationCount,
			"awaiting_response": pendingQuotations,
		},
		"orders": echo.Map{
			"total":   orderCount,
			"pending": pendingOrders,
		},
		"delivered_revenue": revenue,
	})
}

// ProductRequest represents a product create or update request
type ProductRequest struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Category         string           `json:"category"`
	Price            *decimal.Decimal `json:"price"`
	StockQuantity    *int             `json:"stock_quantity"`
	MinOrderQuantity *int             `json:"min_order_quantity"`
	Unit             string           `json:"unit"`
	Images           []string         `json:"images"`
	IsActive         *bool            `json:"is_active"`
}

// ListSupplierProducts returns the supplier's own catalog
func ListSupplierProducts(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Where("supplier_id = ?", supplierID(c))
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []model.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list products"})
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products, "count": len(products)})
}

// CreateProduct adds a product to the supplier's catalog
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and price are required"})
	}
	if req.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	product := model.Product{
		SupplierID:       supplierID(c),
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Price:            *req.Price,
		Unit:             fallback(req.Unit, "piece"),
		MinOrderQuantity: 1,
		IsActive:         true,
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.MinOrderQuantity != nil && *req.MinOrderQuantity > 0 {
		product.MinOrderQuantity = *req.MinOrderQuantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.SetImages(req.Images)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	prometheus.ProductOperationCounter.WithLabelValues("create").Inc()
	log.Info("Product created", zap.Uint("product_id", product.ID), zap.Uint("supplier_id", product.SupplierID))

	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

// GetSupplierProduct returns one of the supplier's own products
func GetSupplierProduct(c echo.Context) error {
	db := database.GetDB()

	var product model.Product
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&product, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// UpdateProduct updates one of the supplier's own products
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var product model.Product
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&product, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
		}
		updates["price"] = *req.Price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.MinOrderQuantity != nil && *req.MinOrderQuantity > 0 {
		updates["min_order_quantity"] = *req.MinOrderQuantity
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.Images != nil {
		product.SetImages(req.Images)
		updates["images"] = product.Images
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			log.Error("Failed to update product", zap.Error(err), zap.Uint("product_id", product.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
		}
	}

	prometheus.ProductOperationCounter.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// DeleteProduct removes one of the supplier's own products from the catalog
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var product model.Product
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&product, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&product).Error; err != nil {
		log.Error("Failed to delete product", zap.Error(err), zap.Uint("product_id", product.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}

	prometheus.ProductOperationCounter.WithLabelValues("delete").Inc()
	log.Info("Product deleted", zap.Uint("product_id", product.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

// QuotationItemRequest is one line of a quotation create request
type QuotationItemRequest struct {
	ProductID   *uint            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// QuotationRequestBody represents a quotation create request. Line and grand
// totals are always computed server-side.
type QuotationRequestBody struct {
	MerchantID  *uint                  `json:"merchant_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Currency    string                 `json:"currency"`
	ValidUntil  *time.Time             `json:"valid_until"`
	Notes       string                 `json:"notes"`
	Items       []QuotationItemRequest `json:"items"`
}

// ListSupplierQuotations returns the supplier's quotations
func ListSupplierQuotations(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Preload("Items").Where("supplier_id = ?", supplierID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotations []model.Quotation
	if err := query.Order("id DESC").Find(&quotations).Error; err != nil {
		log.Error("Failed to list quotations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list quotations"})
	}

	return c.JSON(http.StatusOK, echo.Map{"quotations": quotations, "count": len(quotations)})
}

// CreateQuotation creates a draft quotation with server-computed totals
func CreateQuotation(c echo.Context) error {
	log := logger.FromContext(c)

	var req QuotationRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and at least one item are required"})
	}

	items := make([]model.QuotationItem, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		if it.ProductName == "" || it.Quantity <= 0 || it.UnitPrice == nil || it.UnitPrice.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs a product_name, positive quantity and non-negative unit_price"})
		}
		lineTotal := model.LineTotal(it.Quantity, *it.UnitPrice)
		total = total.Add(lineTotal)
		items = append(items, model.QuotationItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   *it.UnitPrice,
			TotalPrice:  lineTotal,
		})
	}

	quotation := model.Quotation{
		SupplierID:      supplierID(c),
		MerchantID:      req.MerchantID,
		QuotationNumber: model.GenerateNumber("Q"),
		Title:           req.Title,
		Description:     req.Description,
		TotalAmount:     total,
		Currency:        fallback(req.Currency, "SAR"),
		Status:          model.QuotationDraft,
		ValidUntil:      req.ValidUntil,
		Notes:           req.Notes,
		Items:           items,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&quotation).Error; err != nil {
		log.Error("Failed to create quotation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create quotation"})
	}

	prometheus.QuotationOperationCounter.WithLabelValues("create").Inc()
	log.Info("Quotation created",
		zap.Uint("quotation_id", quotation.ID),
		zap.String("number", quotation.QuotationNumber))

	return c.JSON(http.StatusCreated, echo.Map{"quotation": quotation})
}

// GetSupplierQuotation returns one of the supplier's own quotations
func GetSupplierQuotation(c echo.Context) error {
	db := database.GetDB()

	var quotation model.Quotation
	if err := db.Preload("Items").Where("supplier_id = ?", supplierID(c)).
		First(&quotation, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"quotation": quotation})
}

// UpdateQuotationStatus moves a quotation along its lifecycle. Acceptance is
// reserved for the merchant accept endpoint.
func UpdateQuotationStatus(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		Status model.QuotationStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil || !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of draft, sent, accepted, rejected, expired"})
	}
	if req.Status == model.QuotationAccepted {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quotations are accepted by the merchant, not the supplier"})
	}

	var quotation model.Quotation
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&quotation, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation not found"})
	}

	if !quotation.Status.CanTransitionTo(req.Status) {
		prometheus.InvalidTransitionCounter.WithLabelValues("quotation").Inc()
		log.Warn("Rejected quotation transition",
			zap.Uint("quotation_id", quotation.ID),
			zap.String("from", string(quotation.Status)),
			zap.String("to", string(req.Status)))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cannot move quotation from " + string(quotation.Status) + " to " + string(req.Status),
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&quotation).Update("status", req.Status).Error; err != nil {
		log.Error("Failed to update quotation status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update quotation"})
	}

	prometheus.QuotationOperationCounter.WithLabelValues("status_update").Inc()
	return c.JSON(http.StatusOK, echo.Map{"quotation": quotation})
}

// ListSupplierOrders returns purchase orders placed with the supplier
func ListSupplierOrders(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Preload("Items").Where("supplier_id = ?", supplierID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.PurchaseOrder
	if err := query.Order("id DESC").Find(&orders).Error; err != nil {
		log.Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list orders"})
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": orders, "count": len(orders)})
}

// GetSupplierOrder returns one purchase order placed with the supplier
func GetSupplierOrder(c echo.Context) error {
	db := database.GetDB()

	var order model.PurchaseOrder
	if err := db.Preload("Items").Preload("Payments").Where("supplier_id = ?", supplierID(c)).
		First(&order, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// UpdateOrderStatus moves a purchase order along the fulfillment pipeline
func UpdateOrderStatus(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		Status                model.OrderStatus `json:"status"`
		DeliveryDateConfirmed *time.Time        `json:"delivery_date_confirmed"`
	}
	if err := c.Bind(&req); err != nil || !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of pending, confirmed, processing, shipped, delivered, cancelled"})
	}

	var order model.PurchaseOrder
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&order, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	if !order.Status.CanTransitionTo(req.Status) {
		prometheus.InvalidTransitionCounter.WithLabelValues("order").Inc()
		log.Warn("Rejected order transition",
			zap.Uint("order_id", order.ID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(req.Status)))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cannot move order from " + string(order.Status) + " to " + string(req.Status),
		})
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.DeliveryDateConfirmed != nil {
		updates["delivery_date_confirmed"] = req.DeliveryDateConfirmed
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		// Delivered orders count toward the supplier's lifetime order total
		if req.Status == model.OrderDelivered {
			if err := tx.Model(&model.Supplier{}).Where("id = ?", order.SupplierID).
				UpdateColumn("total_orders", gorm.Expr("total_orders + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to update order status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
	}

	prometheus.OrderOperationCounter.WithLabelValues("status_update").Inc()
	log.Info("Order status updated",
		zap.Uint("order_id", order.ID),
		zap.String("status", string(req.Status)))

	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// DriverRequest represents a supplier driver create or update request
type DriverRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseNumber string `json:"license_number"`
	VehicleType   string `json:"vehicle_type"`
	VehiclePlate  string `json:"vehicle_plate"`
	IsActive      *bool  `json:"is_active"`
}

// ListDrivers returns the supplier's delivery drivers
func ListDrivers(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var drivers []model.Driver
	if err := db.Where("supplier_id = ?", supplierID(c)).Order("id").Find(&drivers).Error; err != nil {
		log.Error("Failed to list drivers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list drivers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"drivers": drivers, "count": len(drivers)})
}

// CreateDriver adds a delivery driver to the supplier's fleet
func CreateDriver(c echo.Context) error {
	log := logger.FromContext(c)

	var req DriverRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone are required"})
	}

	driver := model.Driver{
		SupplierID:    supplierID(c),
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		LicenseNumber: req.LicenseNumber,
		VehicleType:   req.VehicleType,
		VehiclePlate:  req.VehiclePlate,
		IsActive:      true,
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&driver).Error; err != nil {
		log.Error("Failed to create driver", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create driver"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"driver": driver})
}

// UpdateDriver updates one of the supplier's drivers
func UpdateDriver(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var driver model.Driver
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&driver, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
	}

	var req DriverRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.LicenseNumber != "" {
		updates["license_number"] = req.LicenseNumber
	}
	if req.VehicleType != "" {
		updates["vehicle_type"] = req.VehicleType
	}
	if req.VehiclePlate != "" {
		updates["vehicle_plate"] = req.VehiclePlate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := db.Model(&driver).Updates(updates).Error; err != nil {
			log.Error("Failed to update driver", zap.Error(err), zap.Uint("driver_id", driver.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update driver"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"driver": driver})
}

// DeleteDriver removes one of the supplier's drivers
func DeleteDriver(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var driver model.Driver
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&driver, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&driver).Error; err != nil {
		log.Error("Failed to delete driver", zap.Error(err), zap.Uint("driver_id", driver.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete driver"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "driver deleted"})
}

// ListSupplierShipments returns shipments carrying the supplier's orders,
// newest first. Shipments reach a supplier only through a purchase order.
func ListSupplierShipments(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Joins("JOIN purchase_orders ON purchase_orders.id = shipments.order_id").
		Where("purchase_orders.supplier_id = ?", supplierID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("shipments.status = ?", status)
	}

	var shipments []model.Shipment
	if err := query.Order("shipments.created_at DESC, shipments.id DESC").Find(&shipments).Error; err != nil {
		log.Error("Failed to list shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list shipments"})
	}

	return c.JSON(http.StatusOK, echo.Map{"shipments": shipments, "count": len(shipments)})
}

// PartnerRequest represents a business partner create or update request
type PartnerRequest struct {
	PartnerName   string     `json:"partner_name"`
	PartnerType   string     `json:"partner_type"`
	ContactPerson string     `json:"contact_person"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	ContractStart *time.Time `json:"contract_start"`
	ContractEnd   *time.Time `json:"contract_end"`
	Notes         string     `json:"notes"`
}

// ListPartners returns the supplier's business partners
func ListPartners(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	query := db.Where("supplier_id = ?", supplierID(c))
	if partnerType := c.QueryParam("type"); partnerType != "" {
		query = query.Where("partner_type = ?", partnerType)
	}

	var partners []model.Partner
	if err := query.Order("id").Find(&partners).Error; err != nil {
		log.Error("Failed to list partners", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list partners"})
	}
	return c.JSON(http.StatusOK, echo.Map{"partners": partners, "count": len(partners)})
}

// CreatePartner records a business partner for the supplier
func CreatePartner(c echo.Context) error {
	log := logger.FromContext(c)

	var req PartnerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PartnerName == "" || req.PartnerType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "partner_name and partner_type are required"})
	}

	partner := model.Partner{
		SupplierID:    supplierID(c),
		PartnerName:   req.PartnerName,
		PartnerType:   req.PartnerType,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		ContractStart: req.ContractStart,
		ContractEnd:   req.ContractEnd,
		Notes:         req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&partner).Error; err != nil {
		log.Error("Failed to create partner", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create partner"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"partner": partner})
}

// UpdatePartner updates one of the supplier's partners
func UpdatePartner(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var partner model.Partner
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&partner, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "partner not found"})
	}

	var req PartnerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.PartnerName != "" {
		updates["partner_name"] = req.PartnerName
	}
	if req.PartnerType != "" {
		updates["partner_type"] = req.PartnerType
	}
	if req.ContactPerson != "" {
		updates["contact_person"] = req.ContactPerson
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.ContractStart != nil {
		updates["contract_start"] = req.ContractStart
	}
	if req.ContractEnd != nil {
		updates["contract_end"] = req.ContractEnd
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := db.Model(&partner).Updates(updates).Error; err != nil {
			log.Error("Failed to update partner", zap.Error(err), zap.Uint("partner_id", partner.ID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update partner"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"partner": partner})
}

// DeletePartner removes one of the supplier's partners
func DeletePartner(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var partner model.Partner
	if err := db.Where("supplier_id = ?", supplierID(c)).First(&partner, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "partner not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&partner).Error; err != nil {
		log.Error("Failed to delete partner", zap.Error(err), zap.Uint("partner_id", partner.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete partner"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "partner deleted"})
}

// ListMerchants lets a supplier browse merchant storefronts
func ListMerchants(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	var merchants []model.Merchant
	if err := db.Order("id").Find(&merchants).Error; err != nil {
		log.Error("Failed to list merchants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list merchants"})
	}

	return c.JSON(http.StatusOK, echo.Map{"merchants": merchants, "count": len(merchants)})
}
