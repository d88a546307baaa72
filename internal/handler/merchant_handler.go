package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

// GetMerchantProfile returns the authenticated merchant's store profile
func GetMerchantProfile(c echo.Context) error {
	db := database.GetDB()

	var merchant model.Merchant
	if err := db.First(&merchant, merchantID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant profile not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"merchant": merchant})
}

// UpdateMerchantProfile updates the authenticated merchant's store profile
func UpdateMerchantProfile(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var merchant model.Merchant
	if err := db.First(&merchant, merchantID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant profile not found"})
	}

	var req struct {
		StoreName              *string `json:"store_name"`
		StoreAddress           *string `json:"store_address"`
		StoreType              *string `json:"store_type"`
		TaxNumber              *string `json:"tax_number"`
		CommercialLicense      *string `json:"commercial_license"`
		Description            *string `json:"description"`
		LogoURL                *string `json:"logo_url"`
		PreferredPaymentMethod *string `json:"preferred_payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.StoreName != nil {
		updates["store_name"] = *req.StoreName
	}
	if req.StoreAddress != nil {
		updates["store_address"] = *req.StoreAddress
	}
	if req.StoreType != nil {
		updates["store_type"] = *req.StoreType
	}
	if req.TaxNumber != nil {
		updates["tax_number"] = *req.TaxNumber
	}
	if req.CommercialLicense != nil {
		updates["commercial_license"] = *req.CommercialLicense
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.PreferredPaymentMethod != nil {
		updates["preferred_payment_method"] = *req.PreferredPaymentMethod
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := db.Model(&merchant).Updates(updates).Error; err != nil {
			log.Error("Failed to update merchant profile", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"merchant": merchant})
}

// GetMerchantDashboard returns aggregate counts for the merchant landing page
func GetMerchantDashboard(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	mid := merchantID(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var orderCount, activeOrders int64
	db.Model(&model.PurchaseOrder{}).Where("merchant_id = ?", mid).Count(&orderCount)
	db.Model(&model.PurchaseOrder{}).
		Where("merchant_id = ? AND status NOT IN ?", mid, []model.OrderStatus{model.OrderDelivered, model.OrderCancelled}).
		Count(&activeOrders)

	var receivedQuotations int64
	db.Model(&model.Quotation{}).Where("merchant_id = ? AND status = ?", mid, model.QuotationSent).Count(&receivedQuotations)

	var openRequests int64
	db.Model(&model.QuotationRequest{}).
		Where("merchant_id = ? AND status NOT IN ?", mid, []model.RequestStatus{model.RequestClosed}).
		Count(&openRequests)

	var favoriteCount int64
	db.Model(&model.FavoriteSupplier{}).Where("merchant_id = ?", mid).Count(&favoriteCount)

	var orders []model.PurchaseOrder
	if err := db.Where("merchant_id = ?", mid).Find(&orders).Error; err != nil {
		log.Error("Failed to load orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	spent := decimal.Zero
	outstanding := decimal.Zero
	for _, o := range orders {
		if o.Status == model.OrderCancelled {
			continue
		}
		spent = spent.Add(o.TotalAmount)
		if o.PaymentStatus != model.PaymentStatusPaid {
			outstanding = outstanding.Add(o.TotalAmount)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": echo.Map{
			"total":  orderCount,
			"active": activeOrders,
		},
		"quotations_awaiting_review": receivedQuotations,
		"open_quotation_requests":    openRequests,
		"favorite_suppliers":         favoriteCount,
		"total_ordered":              spent,
		"outstanding_estimate":       outstanding,
	})
}

// ListSuppliers lets a merchant browse supplier companies. Bookmarked
// suppliers carry an is_favorite flag.
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Order("id")
	if q := c.QueryParam("q"); q != "" {
		query = query.Where("company_name ILIKE ?", "%"+q+"%")
	}

	var suppliers []model.Supplier
	if err := query.Find(&suppliers).Error; err != nil {
		log.Error("Failed to list suppliers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list suppliers"})
	}

	var favorites []model.FavoriteSupplier
	db.Where("merchant_id = ?", merchantID(c)).Find(&favorites)
	favoriteSet := make(map[uint]bool, len(favorites))
	for _, f := range favorites {
		favoriteSet[f.SupplierID] = true
	}

	results := make([]echo.Map, 0, len(suppliers))
	for _, s := range suppliers {
		results = append(results, echo.Map{
			"supplier":    s,
			"is_favorite": favoriteSet[s.ID],
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"suppliers": results, "count": len(results)})
}

// ListSupplierCatalog returns a supplier's active products to a merchant
func ListSupplierCatalog(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var supplier model.Supplier
	if err := db.First(&supplier, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier not found"})
	}

	var products []model.Product
	if err := db.Where("supplier_id = ? AND is_active = ?", supplier.ID, true).
		Order("id").Find(&products).Error; err != nil {
		log.Error("Failed to list supplier catalog", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list products"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"supplier": supplier,
		"products": products,
		"count":    len(products),
	})
}

// SearchProducts searches active products across all suppliers
func SearchProducts(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Where("is_active = ?", true)
	if q := c.QueryParam("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []model.Product
	if err := query.Order("id").Limit(100).Find(&products).Error; err != nil {
		log.Error("Product search failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	prometheus.ProductOperationCounter.WithLabelValues("search").Inc()
	return c.JSON(http.StatusOK, echo.Map{"products": products, "count": len(products)})
}

// ListFavoriteSuppliers returns the merchant's bookmarked suppliers
func ListFavoriteSuppliers(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var favorites []model.FavoriteSupplier
	if err := db.Where("merchant_id = ?", merchantID(c)).Order("id").Find(&favorites).Error; err != nil {
		log.Error("Failed to list favorites", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list favorites"})
	}

	return c.JSON(http.StatusOK, echo.Map{"favorites": favorites, "count": len(favorites)})
}

// AddFavoriteSupplier bookmarks a supplier for the merchant
func AddFavoriteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		SupplierID uint   `json:"supplier_id"`
		Notes      string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil || req.SupplierID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "supplier_id is required"})
	}

	var supplier model.Supplier
	if err := db.First(&supplier, req.SupplierID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier not found"})
	}

	favorite := model.FavoriteSupplier{
		MerchantID: merchantID(c),
		SupplierID: req.SupplierID,
		Notes:      req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	// The composite unique index makes re-bookmarking a no-op
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&favorite).Error; err != nil {
		log.Error("Failed to add favorite", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add favorite"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"favorite": favorite})
}

// RemoveFavoriteSupplier removes a supplier bookmark
func RemoveFavoriteSupplier(c echo.Context) error {
	db := database.GetDB()

	result := db.Where("merchant_id = ? AND supplier_id = ?", merchantID(c), c.Param("supplier_id")).
		Delete(&model.FavoriteSupplier{})
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove favorite"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "favorite not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "favorite removed"})
}

// QuotationRequestItemBody is one line of a quotation request
type QuotationRequestItemBody struct {
	ProductName    string           `json:"product_name"`
	Description    string           `json:"description"`
	QuantityNeeded int              `json:"quantity_needed"`
	Unit           string           `json:"unit"`
	MaxPrice       *decimal.Decimal `json:"max_price"`
	Specifications string           `json:"specifications"`
}

// CreateQuotationRequest opens a request for quotations (RFQ)
func CreateQuotationRequest(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Title                string                     `json:"title"`
		Description          string                     `json:"description"`
		DeliveryDateRequired *time.Time                 `json:"delivery_date_required"`
		DeliveryAddress      string                     `json:"delivery_address"`
		Notes                string                     `json:"notes"`
		Items                []QuotationRequestItemBody `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and at least one item are required"})
	}

	items := make([]model.QuotationRequestItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductName == "" || it.QuantityNeeded <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs a product_name and positive quantity_needed"})
		}
		items = append(items, model.QuotationRequestItem{
			ProductName:    it.ProductName,
			Description:    it.Description,
			QuantityNeeded: it.QuantityNeeded,
			Unit:           fallback(it.Unit, "piece"),
			MaxPrice:       it.MaxPrice,
			Specifications: it.Specifications,
		})
	}

	request := model.QuotationRequest{
		MerchantID:           merchantID(c),
		RequestNumber:        model.GenerateNumber("RFQ"),
		Title:                req.Title,
		Description:          req.Description,
		DeliveryDateRequired: req.DeliveryDateRequired,
		DeliveryAddress:      req.DeliveryAddress,
		Status:               model.RequestDraft,
		Notes:                req.Notes,
		Items:                items,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&request).Error; err != nil {
		log.Error("Failed to create quotation request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create quotation request"})
	}

	log.Info("Quotation request created",
		zap.Uint("request_id", request.ID),
		zap.String("number", request.RequestNumber))

	return c.JSON(http.StatusCreated, echo.Map{"quotation_request": request})
}

// ListQuotationRequests returns the merchant's quotation requests
func ListQuotationRequests(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	query := db.Preload("Items").Where("merchant_id = ?", merchantID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []model.QuotationRequest
	if err := query.Order("id DESC").Find(&requests).Error; err != nil {
		log.Error("Failed to list quotation requests", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list quotation requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{"quotation_requests": requests, "count": len(requests)})
}

// GetQuotationRequest returns one of the merchant's quotation requests
func GetQuotationRequest(c echo.Context) error {
	db := database.GetDB()

	var request model.QuotationRequest
	if err := db.Preload("Items").Where("merchant_id = ?", merchantID(c)).
		First(&request, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation request not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"quotation_request": request})
}

// UpdateQuotationRequestStatus moves a quotation request along its lifecycle
func UpdateQuotationRequestStatus(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		Status model.RequestStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil || !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of draft, sent, received_quotes, closed"})
	}

	var request model.QuotationRequest
	if err := db.Where("merchant_id = ?", merchantID(c)).First(&request, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation request not found"})
	}

	if !request.Status.CanTransitionTo(req.Status) {
		prometheus.InvalidTransitionCounter.WithLabelValues("quotation_request").Inc()
		log.Warn("Rejected quotation request transition",
			zap.Uint("request_id", request.ID),
			zap.String("from", string(request.Status)),
			zap.String("to", string(req.Status)))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cannot move request from " + string(request.Status) + " to " + string(req.Status),
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&request).Update("status", req.Status).Error; err != nil {
		log.Error("Failed to update quotation request", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update quotation request"})
	}

	return c.JSON(http.StatusOK, echo.Map{"quotation_request": request})
}

// ListReceivedQuotations returns quotations addressed to the merchant
func ListReceivedQuotations(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	query := db.Preload("Items").Where("merchant_id = ?", merchantID(c)).
		Where("status <> ?", model.QuotationDraft)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotations []model.Quotation
	if err := query.Order("id DESC").Find(&quotations).Error; err != nil {
		log.Error("Failed to list received quotations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list quotations"})
	}

	return c.JSON(http.StatusOK, echo.Map{"quotations": quotations, "count": len(quotations)})
}

// GetReceivedQuotation returns one quotation addressed to the merchant
func GetReceivedQuotation(c echo.Context) error {
	db := database.GetDB()

	var quotation model.Quotation
	if err := db.Preload("Items").
		Where("merchant_id = ? AND status <> ?", merchantID(c), model.QuotationDraft).
		First(&quotation, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"quotation": quotation})
}

// AcceptQuotationRequestBody carries the delivery details for the purchase
// order derived from an accepted quotation
type AcceptQuotationRequestBody struct {
	DeliveryAddress       string     `json:"delivery_address"`
	DeliveryDateRequested *time.Time `json:"delivery_date_requested"`
	PaymentMethod         string     `json:"payment_method"`
	Notes                 string     `json:"notes"`
}

// AcceptQuotation accepts a sent quotation and derives a purchase order from
// it in one transaction. The order items are snapshots of the quotation
// lines; the quotation row is locked so two concurrent accepts cannot both
// succeed.
func AcceptQuotation(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	mid := merchantID(c)

	var req AcceptQuotationRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var order model.PurchaseOrder

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		var quotation model.Quotation
		if err := database.LockForUpdate(tx).Preload("Items").
			Where("merchant_id = ?", mid).
			First(&quotation, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}

		if quotation.Status != model.QuotationSent {
			prometheus.InvalidTransitionCounter.WithLabelValues("quotation").Inc()
			return echo.NewHTTPError(http.StatusBadRequest,
				"only sent quotations can be accepted, current status is "+string(quotation.Status))
		}

		if err := tx.Model(&quotation).Update("status", model.QuotationAccepted).Error; err != nil {
			return err
		}

		items := make([]model.PurchaseOrderItem, 0, len(quotation.Items))
		total := decimal.Zero
		for _, qi := range quotation.Items {
			total = total.Add(qi.TotalPrice)
			items = append(items, model.PurchaseOrderItem{
				ProductID:   qi.ProductID,
				ProductName: qi.ProductName,
				Description: qi.Description,
				Quantity:    qi.Quantity,
				UnitPrice:   qi.UnitPrice,
				TotalPrice:  qi.TotalPrice,
			})
		}

		quotationID := quotation.ID
		order = model.PurchaseOrder{
			MerchantID:            mid,
			SupplierID:            quotation.SupplierID,
			QuotationID:           &quotationID,
			OrderNumber:           model.GenerateNumber("PO"),
			TotalAmount:           total,
			Currency:              quotation.Currency,
			Status:                model.OrderPending,
			PaymentStatus:         model.PaymentStatusPending,
			PaymentMethod:         req.PaymentMethod,
			DeliveryAddress:       req.DeliveryAddress,
			DeliveryDateRequested: req.DeliveryDateRequested,
			Notes:                 req.Notes,
			Items:                 items,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation not found"})
		}
		log.Error("Failed to accept quotation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to accept quotation"})
	}

	prometheus.QuotationOperationCounter.WithLabelValues("accept").Inc()
	prometheus.OrderOperationCounter.WithLabelValues("create").Inc()
	log.Info("Quotation accepted",
		zap.String("quotation_id", c.Param("id")),
		zap.String("order_number", order.OrderNumber))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "quotation accepted",
		"order":   order,
	})
}

// RejectQuotation rejects a sent quotation
func RejectQuotation(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var quotation model.Quotation
	if err := db.Where("merchant_id = ?", merchantID(c)).
		First(&quotation, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quotation not found"})
	}

	if !quotation.Status.CanTransitionTo(model.QuotationRejected) {
		prometheus.InvalidTransitionCounter.WithLabelValues("quotation").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "only sent quotations can be rejected, current status is " + string(quotation.Status),
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&quotation).Update("status", model.QuotationRejected).Error; err != nil {
		log.Error("Failed to reject quotation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject quotation"})
	}

	prometheus.QuotationOperationCounter.WithLabelValues("reject").Inc()
	return c.JSON(http.StatusOK, echo.Map{"quotation": quotation})
}

// OrderItemBody is one line of a direct purchase order
type OrderItemBody struct {
	ProductID   *uint            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ListMerchantOrders returns the merchant's purchase orders
func ListMerchantOrders(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Preload("Items").Where("merchant_id = ?", merchantID(c))
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

// CreateOrder places a purchase order directly, without a quotation. The
// total is always computed server-side from the item lines.
func CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		SupplierID            uint            `json:"supplier_id"`
		Currency              string          `json:"currency"`
		PaymentMethod         string          `json:"payment_method"`
		DeliveryAddress       string          `json:"delivery_address"`
		DeliveryDateRequested *time.Time      `json:"delivery_date_requested"`
		Notes                 string          `json:"notes"`
		Items                 []OrderItemBody `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SupplierID == 0 || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "supplier_id and at least one item are required"})
	}

	var supplier model.Supplier
	if err := db.First(&supplier, req.SupplierID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier not found"})
	}

	items := make([]model.PurchaseOrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		if it.ProductName == "" || it.Quantity <= 0 || it.UnitPrice == nil || it.UnitPrice.IsNegative() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs a product_name, positive quantity and non-negative unit_price"})
		}
		lineTotal := model.LineTotal(it.Quantity, *it.UnitPrice)
		total = total.Add(lineTotal)
		items = append(items, model.PurchaseOrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   *it.UnitPrice,
			TotalPrice:  lineTotal,
		})
	}

	order := model.PurchaseOrder{
		MerchantID:            merchantID(c),
		SupplierID:            req.SupplierID,
		OrderNumber:           model.GenerateNumber("PO"),
		TotalAmount:           total,
		Currency:              fallback(req.Currency, "SAR"),
		Status:                model.OrderPending,
		PaymentStatus:         model.PaymentStatusPending,
		PaymentMethod:         req.PaymentMethod,
		DeliveryAddress:       req.DeliveryAddress,
		DeliveryDateRequested: req.DeliveryDateRequested,
		Notes:                 req.Notes,
		Items:                 items,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&order).Error; err != nil {
		log.Error("Failed to create order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	prometheus.OrderOperationCounter.WithLabelValues("create").Inc()
	log.Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber))

	return c.JSON(http.StatusCreated, echo.Map{"order": order})
}

// GetMerchantOrder returns one of the merchant's purchase orders
func GetMerchantOrder(c echo.Context) error {
	db := database.GetDB()

	var order model.PurchaseOrder
	if err := db.Preload("Items").Preload("Payments").Where("merchant_id = ?", merchantID(c)).
		First(&order, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// CancelOrder cancels one of the merchant's purchase orders if the pipeline
// still allows it
func CancelOrder(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var order model.PurchaseOrder
	if err := db.Where("merchant_id = ?", merchantID(c)).First(&order, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	if !order.Status.CanTransitionTo(model.OrderCancelled) {
		prometheus.InvalidTransitionCounter.WithLabelValues("order").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cannot cancel an order in status " + string(order.Status),
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&order).Update("status", model.OrderCancelled).Error; err != nil {
		log.Error("Failed to cancel order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel order"})
	}

	prometheus.OrderOperationCounter.WithLabelValues("cancel").Inc()
	log.Info("Order cancelled", zap.Uint("order_id", order.ID))
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// ListOrderPayments returns the payments recorded against one of the
// merchant's orders
func ListOrderPayments(c echo.Context) error {
	db := database.GetDB()

	var order model.PurchaseOrder
	if err := db.Where("merchant_id = ?", merchantID(c)).First(&order, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	var payments []model.Payment
	if err := db.Where("purchase_order_id = ?", order.ID).Order("id").Find(&payments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list payments"})
	}

	paid := decimal.Zero
	for _, p := range payments {
		if p.Status == model.PaymentCompleted {
			paid = paid.Add(p.Amount)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payments":        payments,
		"count":           len(payments),
		"completed_total": paid,
		"order_total":     order.TotalAmount,
		"payment_status":  order.PaymentStatus,
	})
}

// ListMerchantPayments returns every payment recorded against the merchant's
// orders, newest first
func ListMerchantPayments(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Joins("JOIN purchase_orders ON purchase_orders.id = payments.purchase_order_id").
		Where("purchase_orders.merchant_id = ?", merchantID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("payments.status = ?", status)
	}

	var payments []model.Payment
	if err := query.Order("payments.created_at DESC, payments.id DESC").Find(&payments).Error; err != nil {
		log.Error("Failed to list payments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list payments"})
	}

	return c.JSON(http.StatusOK, echo.Map{"payments": payments, "count": len(payments)})
}

// PaymentRequestBody represents a payment record request
type PaymentRequestBody struct {
	Amount        *decimal.Decimal   `json:"amount"`
	PaymentMethod string             `json:"payment_method"`
	PaymentDate   *time.Time         `json:"payment_date"`
	Status        model.PaymentState `json:"status"`
	TransactionID string             `json:"transaction_id"`
	Notes         string             `json:"notes"`
}

// CreatePayment records a payment against one of the merchant's orders and
// re-derives the order's payment status from its completed payments. The
// order row is locked so concurrent payments serialize.
func CreatePayment(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	mid := merchantID(c)

	var req PaymentRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Amount == nil || !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
	}
	if req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method is required"})
	}
	if req.Status == "" {
		req.Status = model.PaymentCompleted
	}
	if !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of pending, completed, failed, refunded"})
	}

	var payment model.Payment
	var paymentStatus model.PaymentStatus

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		var order model.PurchaseOrder
		if err := database.LockForUpdate(tx).
			Where("merchant_id = ?", mid).
			First(&order, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}

		if order.Status == model.OrderCancelled {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot record payments on a cancelled order")
		}

		paymentDate := time.Now().UTC()
		if req.PaymentDate != nil {
			paymentDate = *req.PaymentDate
		}

		payment = model.Payment{
			PurchaseOrderID: order.ID,
			PaymentNumber:   model.GenerateNumber("PAY"),
			Amount:          *req.Amount,
			Currency:        order.Currency,
			PaymentMethod:   req.PaymentMethod,
			PaymentDate:     paymentDate,
			Status:          req.Status,
			TransactionID:   req.TransactionID,
			Notes:           req.Notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var payments []model.Payment
		if err := tx.Where("purchase_order_id = ? AND status = ?", order.ID, model.PaymentCompleted).
			Find(&payments).Error; err != nil {
			return err
		}
		completed := decimal.Zero
		for _, p := range payments {
			completed = completed.Add(p.Amount)
		}

		paymentStatus = model.DerivePaymentStatus(completed, order.TotalAmount)
		if paymentStatus == order.PaymentStatus {
			return nil
		}
		return tx.Model(&order).Update("payment_status", paymentStatus).Error
	})
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		log.Error("Failed to record payment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}

	prometheus.PaymentOperationCounter.WithLabelValues("create").Inc()
	log.Info("Payment recorded",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("payment_status", string(paymentStatus)))

	return c.JSON(http.StatusCreated, echo.Map{
		"payment":        payment,
		"payment_status": paymentStatus,
	})
}

// ListShippingCompanies lets a merchant browse active shipping companies
func ListShippingCompanies(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var companies []model.ShippingCompany
	if err := db.Where("is_active = ?", true).Order("id").Find(&companies).Error; err != nil {
		log.Error("Failed to list shipping companies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list shipping companies"})
	}

	return c.JSON(http.StatusOK, echo.Map{"shipping_companies": companies, "count": len(companies)})
}

// GetShippingCompany returns one shipping company's public profile
func GetShippingCompany(c echo.Context) error {
	db := database.GetDB()

	var company model.ShippingCompany
	if err := db.Where("is_active = ?", true).First(&company, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping company not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shipping_company": company})
}

// RequestShippingQuote asks a shipping company for a quote. The price is
// computed from the company's pricing model; the quote starts pending and the
// company decides when to send it.
func RequestShippingQuote(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		ShippingCompanyID uint       `json:"shipping_company_id"`
		PickupCity        string     `json:"pickup_city"`
		DeliveryCity      string     `json:"delivery_city"`
		Distance          float64    `json:"distance"`
		PackageWeight     float64    `json:"package_weight"`
		PackageDimensions string     `json:"package_dimensions"`
		PackageType       string     `json:"package_type"`
		ServiceType       string     `json:"service_type"`
		PickupDate        time.Time  `json:"pickup_date"`
		DeliveryDate      *time.Time `json:"delivery_date"`
		Notes             string     `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ShippingCompanyID == 0 || req.PickupCity == "" || req.DeliveryCity == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shipping_company_id, pickup_city and delivery_city are required"})
	}
	if req.PackageWeight <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "package_weight must be positive"})
	}
	if req.PickupDate.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_date is required"})
	}

	var company model.ShippingCompany
	if err := db.Where("is_active = ?", true).First(&company, req.ShippingCompanyID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping company not found"})
	}
	if company.MaxWeight > 0 && req.PackageWeight > company.MaxWeight {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "package exceeds the company's maximum weight"})
	}
	if company.MaxDistance > 0 && req.Distance > company.MaxDistance {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "route exceeds the company's maximum distance"})
	}

	quote := model.ShippingQuote{
		QuoteNumber:       model.GenerateNumber("SQ"),
		ShippingCompanyID: company.ID,
		MerchantID:        merchantID(c),

		PickupCity:   req.PickupCity,
		DeliveryCity: req.DeliveryCity,
		Distance:     req.Distance,

		PackageWeight:     req.PackageWeight,
		PackageDimensions: req.PackageDimensions,
		PackageType:       req.PackageType,

		ServiceType:  fallback(req.ServiceType, "standard"),
		PickupDate:   req.PickupDate,
		DeliveryDate: req.DeliveryDate,

		QuotedPrice: company.QuotePrice(req.Distance, req.PackageWeight),
		Currency:    "SAR",
		ValidUntil:  time.Now().UTC().Add(7 * 24 * time.Hour),

		Status: model.QuotePending,
		Notes:  req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&quote).Error; err != nil {
		log.Error("Failed to request shipping quote", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to request shipping quote"})
	}

	log.Info("Shipping quote requested",
		zap.Uint("quote_id", quote.ID),
		zap.String("number", quote.QuoteNumber))

	return c.JSON(http.StatusCreated, echo.Map{"shipping_quote": quote})
}

// ListMerchantShippingQuotes returns shipping quotes addressed to the merchant
func ListMerchantShippingQuotes(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	query := db.Where("merchant_id = ?", merchantID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var quotes []model.ShippingQuote
	if err := query.Order("id DESC").Find(&quotes).Error; err != nil {
		log.Error("Failed to list shipping quotes", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list shipping quotes"})
	}

	return c.JSON(http.StatusOK, echo.Map{"shipping_quotes": quotes, "count": len(quotes)})
}

// RespondToShippingQuote accepts or rejects a sent shipping quote
func RespondToShippingQuote(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		Response string `json:"response"`
	}
	if err := c.Bind(&req); err != nil || (req.Response != "accept" && req.Response != "reject") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "response must be accept or reject"})
	}

	var quote model.ShippingQuote
	if err := db.Where("merchant_id = ?", merchantID(c)).First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping quote not found"})
	}

	target := model.QuoteAccepted
	if req.Response == "reject" {
		target = model.QuoteRejected
	}

	if !quote.Status.CanTransitionTo(target) {
		prometheus.InvalidTransitionCounter.WithLabelValues("shipping_quote").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "only sent quotes can be responded to, current status is " + string(quote.Status),
		})
	}

	now := time.Now().UTC()
	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&quote).Updates(map[string]interface{}{
		"status":       target,
		"responded_at": now,
	}).Error; err != nil {
		log.Error("Failed to respond to shipping quote", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to respond to quote"})
	}

	log.Info("Shipping quote response recorded",
		zap.Uint("quote_id", quote.ID),
		zap.String("response", req.Response))

	return c.JSON(http.StatusOK, echo.Map{"shipping_quote": quote})
}

// ListMerchantShipments returns shipments addressed to the merchant
func ListMerchantShipments(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	query := db.Where("merchant_id = ?", merchantID(c))
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var shipments []model.Shipment
	if err := query.Order("id DESC").Find(&shipments).Error; err != nil {
		log.Error("Failed to list shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list shipments"})
	}

	return c.JSON(http.StatusOK, echo.Map{"shipments": shipments, "count": len(shipments)})
}
