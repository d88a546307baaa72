package handler

import (
	"errors"
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

func companyID(c echo.Context) uint {
	return c.Get(middleware.ContextCompanyID).(uint)
}

// GetShippingProfile returns the authenticated shipping company's profile
func GetShippingProfile(c echo.Context) error {
	db := database.GetDB()

	var company model.ShippingCompany
	if err := db.First(&company, companyID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping company profile not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shipping_company": company})
}

// UpdateShippingProfile updates the authenticated shipping company's profile
func UpdateShippingProfile(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var company model.ShippingCompany
	if err := db.First(&company, companyID(c)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping company profile not found"})
	}

	var req struct {
		CompanyName  *string             `json:"company_name"`
		ServiceAreas []string            `json:"service_areas"`
		VehicleTypes []string            `json:"vehicle_types"`
		PricingModel *model.PricingModel `json:"pricing_model"`
		BaseRate     *float64            `json:"base_rate"`
		MinCharge    *float64            `json:"min_charge"`
		MaxWeight    *float64            `json:"max_weight"`
		MaxDistance  *float64            `json:"max_distance"`
		IsActive     *bool               `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.ServiceAreas != nil {
		company.SetServiceAreas(req.ServiceAreas)
		updates["service_areas"] = company.ServiceAreas
	}
	if req.VehicleTypes != nil {
		company.SetVehicleTypes(req.VehicleTypes)
		updates["vehicle_types"] = company.VehicleTypes
	}
	if req.PricingModel != nil {
		switch *req.PricingModel {
		case model.PricingPerKm, model.PricingPerWeight, model.PricingFixed:
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "pricing_model must be one of per_km, per_weight, fixed"})
		}
		updates["pricing_model"] = *req.PricingModel
	}
	if req.BaseRate != nil {
		updates["base_rate"] = *req.BaseRate
	}
	if req.MinCharge != nil {
		updates["min_charge"] = *req.MinCharge
	}
	if req.MaxWeight != nil {
		updates["max_weight"] = *req.MaxWeight
	}
	if req.MaxDistance != nil {
		updates["max_distance"] = *req.MaxDistance
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := db.Model(&company).Updates(updates).Error; err != nil {
			log.Error("Failed to update shipping profile", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"shipping_company": company})
}

// GetShippingDashboard returns aggregate counts for the shipping landing page
func GetShippingDashboard(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	cid := companyID(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var shipmentCount, activeShipments, deliveredShipments int64
	db.Model(&model.Shipment{}).Where("shipping_company_id = ?", cid).Count(&shipmentCount)
	db.Model(&model.Shipment{}).
		Where("shipping_company_id = ? AND status NOT IN ?", cid,
			[]model.ShipmentStatus{model.ShipmentDelivered, model.ShipmentCancelled, model.ShipmentReturned}).
		Count(&activeShipments)
	db.Model(&model.Shipment{}).Where("shipping_company_id = ? AND status = ?", cid, model.ShipmentDelivered).
		Count(&deliveredShipments)

	var openQuotes int64
	db.Model(&model.ShippingQuote{}).
		Where("shipping_company_id = ? AND status IN ?", cid, []model.QuoteStatus{model.QuotePending, model.QuoteSent}).
		Count(&openQuotes)

	var driverCount int64
	db.Model(&model.ShippingDriver{}).Where("shipping_company_id = ? AND is_active = ?", cid, true).Count(&driverCount)

	var delivered []model.Shipment
	if err := db.Where("shipping_company_id = ? AND status = ?", cid, model.ShipmentDelivered).
		Find(&delivered).Error; err != nil {
		log.Error("Failed to load delivered shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	revenue := decimal.Zero
	for _, s := range delivered {
		if s.ActualPrice != nil {
			revenue = revenue.Add(*s.ActualPrice)
		} else {
			revenue = revenue.Add(s.QuotedPrice)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"shipments": echo.Map{
			"total":     shipmentCount,
			"active":    activeShipments,
			"delivered": deliveredShipments,
		},
		"open_quotes":       openQuotes,
		"active_drivers":    driverCount,
		"delivered_revenue": revenue,
	})
}

// ShipmentRequestBody represents a shipment create request
type ShipmentRequestBody struct {
	MerchantID uint  `json:"merchant_id"`
	OrderID    *uint `json:"order_id"`

	PickupAddress      string    `json:"pickup_address"`
	PickupContactName  string    `json:"pickup_contact_name"`
	PickupContactPhone string    `json:"pickup_contact_phone"`
	PickupDate         time.Time `json:"pickup_date"`
	PickupTimeSlot     string    `json:"pickup_time_slot"`

	DeliveryAddress      string     `json:"delivery_address"`
	DeliveryContactName  string     `json:"delivery_contact_name"`
	DeliveryContactPhone string     `json:"delivery_contact_phone"`
	DeliveryDate         *time.Time `json:"delivery_date"`
	DeliveryTimeSlot     string     `json:"delivery_time_slot"`

	PackageDescription string  `json:"package_description"`
	PackageWeight      float64 `json:"package_weight"`
	PackageDimensions  string  `json:"package_dimensions"`
	PackageValue       float64 `json:"package_value"`

	QuotedPrice *decimal.Decimal `json:"quoted_price"`
	Currency    string           `json:"currency"`

	Notes               string `json:"notes"`
	SpecialInstructions string `json:"special_instructions"`
}

// ListShipments returns the shipping company's shipments
func ListShipments(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Where("shipping_company_id = ?", companyID(c))
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

// CreateShipment registers a shipment and writes its first tracking event in
// one transaction
func CreateShipment(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req ShipmentRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MerchantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "merchant_id is required"})
	}
	if req.PickupAddress == "" || req.PickupContactName == "" || req.PickupContactPhone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup address and contact are required"})
	}
	if req.DeliveryAddress == "" || req.DeliveryContactName == "" || req.DeliveryContactPhone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "delivery address and contact are required"})
	}
	if req.PickupDate.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_date is required"})
	}
	if req.QuotedPrice == nil || req.QuotedPrice.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quoted_price must be a non-negative amount"})
	}

	var merchant model.Merchant
	if err := db.First(&merchant, req.MerchantID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
	}

	shipment := model.Shipment{
		TrackingNumber:    model.GenerateTrackingNumber(),
		ShippingCompanyID: companyID(c),
		MerchantID:        req.MerchantID,
		OrderID:           req.OrderID,

		PickupAddress:      req.PickupAddress,
		PickupContactName:  req.PickupContactName,
		PickupContactPhone: req.PickupContactPhone,
		PickupDate:         req.PickupDate,
		PickupTimeSlot:     req.PickupTimeSlot,

		DeliveryAddress:      req.DeliveryAddress,
		DeliveryContactName:  req.DeliveryContactName,
		DeliveryContactPhone: req.DeliveryContactPhone,
		DeliveryDate:         req.DeliveryDate,
		DeliveryTimeSlot:     req.DeliveryTimeSlot,

		PackageDescription: req.PackageDescription,
		PackageWeight:      req.PackageWeight,
		PackageDimensions:  req.PackageDimensions,
		PackageValue:       req.PackageValue,

		QuotedPrice: *req.QuotedPrice,
		Currency:    fallback(req.Currency, "SAR"),

		Status:              model.ShipmentPending,
		Notes:               req.Notes,
		SpecialInstructions: req.SpecialInstructions,
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shipment).Error; err != nil {
			return err
		}
		event := model.ShipmentTracking{
			ShipmentID:  shipment.ID,
			Status:      model.ShipmentPending,
			Description: "Shipment registered",
			Timestamp:   time.Now().UTC(),
			CreatedBy:   "shipping_company",
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		log.Error("Failed to create shipment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create shipment"})
	}

	prometheus.ShipmentOperationCounter.WithLabelValues("create").Inc()
	log.Info("Shipment created",
		zap.Uint("shipment_id", shipment.ID),
		zap.String("tracking_number", shipment.TrackingNumber))

	return c.JSON(http.StatusCreated, echo.Map{"shipment": shipment})
}

// GetShipment returns one of the company's shipments with its full timeline
func GetShipment(c echo.Context) error {
	db := database.GetDB()

	var shipment model.Shipment
	if err := db.Where("shipping_company_id = ?", companyID(c)).
		First(&shipment, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipment not found"})
	}

	var history []model.ShipmentTracking
	db.Where("shipment_id = ?", shipment.ID).Order("timestamp ASC, id ASC").Find(&history)

	return c.JSON(http.StatusOK, echo.Map{
		"shipment":         shipment,
		"tracking_history": history,
	})
}

// UpdateShipmentStatus moves a shipment along the delivery pipeline, stamps
// the milestone timestamps and appends a tracking event, all in one
// transaction. The shipment row is locked so concurrent updates serialize.
func UpdateShipmentStatus(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	cid := companyID(c)

	var req struct {
		Status      model.ShipmentStatus `json:"status"`
		Location    string               `json:"location"`
		Description string               `json:"description"`
	}
	if err := c.Bind(&req); err != nil || !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown shipment status"})
	}

	var shipment model.Shipment

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("shipping_company_id = ?", cid).
			First(&shipment, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}

		if !shipment.Status.CanTransitionTo(req.Status) {
			prometheus.InvalidTransitionCounter.WithLabelValues("shipment").Inc()
			return echo.NewHTTPError(http.StatusBadRequest,
				"cannot move shipment from "+string(shipment.Status)+" to "+string(req.Status))
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": req.Status}
		switch req.Status {
		case model.ShipmentConfirmed:
			updates["confirmed_at"] = now
		case model.ShipmentPickedUp:
			updates["picked_up_at"] = now
		case model.ShipmentDelivered:
			updates["delivered_at"] = now
		}
		if err := tx.Model(&shipment).Updates(updates).Error; err != nil {
			return err
		}

		// Delivered shipments count toward the company's lifetime total
		if req.Status == model.ShipmentDelivered {
			if err := tx.Model(&model.ShippingCompany{}).Where("id = ?", cid).
				UpdateColumn("total_deliveries", gorm.Expr("total_deliveries + 1")).Error; err != nil {
				return err
			}
		}

		event := model.ShipmentTracking{
			ShipmentID:  shipment.ID,
			Status:      req.Status,
			Location:    req.Location,
			Description: fallback(req.Description, "Status changed to "+string(req.Status)),
			Timestamp:   now,
			CreatedBy:   "shipping_company",
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shipment not found"})
		}
		log.Error("Failed to update shipment status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update shipment"})
	}

	prometheus.ShipmentOperationCounter.WithLabelValues("status_update").Inc()
	log.Info("Shipment status updated",
		zap.Uint("shipment_id", shipment.ID),
		zap.String("status", string(req.Status)))

	return c.JSON(http.StatusOK, echo.Map{"shipment": shipment})
}

// AddTrackingEvent appends a location update to a shipment's timeline
// without changing its status
func AddTrackingEvent(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req struct {
		Location    string `json:"location"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil || (req.Location == "" && req.Description == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location or description is required"})
	}

	var shipment model.Shipment
	if err := db.Where("shipping_company_id = ?", companyID(c)).
		First(&shipment, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipment not found"})
	}

	event := model.ShipmentTracking{
		ShipmentID:  shipment.ID,
		Status:      shipment.Status,
		Location:    req.Location,
		Description: req.Description,
		Timestamp:   time.Now().UTC(),
		CreatedBy:   "shipping_company",
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&event).Error; err != nil {
		log.Error("Failed to add tracking event", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add tracking event"})
	}

	prometheus.ShipmentOperationCounter.WithLabelValues("tracking_event").Inc()
	return c.JSON(http.StatusCreated, echo.Map{"tracking_event": event})
}

// TrackShipment is the public tracking endpoint, looked up by tracking
// number. No authentication required; contact details are not exposed.
func TrackShipment(c echo.Context) error {
	db := database.GetDB()

	var shipment model.Shipment
	if err := db.Where("tracking_number = ?", c.Param("tracking_number")).First(&shipment).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipment not found"})
	}

	var history []model.ShipmentTracking
	db.Where("shipment_id = ?", shipment.ID).Order("timestamp ASC, id ASC").Find(&history)

	events := make([]echo.Map, 0, len(history))
	for _, h := range history {
		events = append(events, echo.Map{
			"status":      h.Status,
			"location":    h.Location,
			"description": h.Description,
			"timestamp":   h.Timestamp,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tracking_number":  shipment.TrackingNumber,
		"status":           shipment.Status,
		"pickup_date":      shipment.PickupDate,
		"delivery_date":    shipment.DeliveryDate,
		"delivered_at":     shipment.DeliveredAt,
		"tracking_history": events,
	})
}

// ShippingQuoteRequestBody represents a shipping quote create request
type ShippingQuoteRequestBody struct {
	MerchantID uint `json:"merchant_id"`

	PickupCity   string  `json:"pickup_city"`
	DeliveryCity string  `json:"delivery_city"`
	Distance     float64 `json:"distance"`

	PackageWeight     float64 `json:"package_weight"`
	PackageDimensions string  `json:"package_dimensions"`
	PackageType       string  `json:"package_type"`

	ServiceType  string     `json:"service_type"`
	PickupDate   time.Time  `json:"pickup_date"`
	DeliveryDate *time.Time `json:"delivery_date"`

	QuotedPrice *decimal.Decimal `json:"quoted_price"`
	Currency    string           `json:"currency"`
	ValidUntil  *time.Time       `json:"valid_until"`
	Notes       string           `json:"notes"`
}

// ListShippingQuotes returns the company's shipping quotes
func ListShippingQuotes(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	query := db.Where("shipping_company_id = ?", companyID(c))
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

// CreateShippingQuote creates a pending quote for a merchant's route
func CreateShippingQuote(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var req ShippingQuoteRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MerchantID == 0 || req.PickupCity == "" || req.DeliveryCity == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "merchant_id, pickup_city and delivery_city are required"})
	}
	if req.PackageWeight <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "package_weight must be positive"})
	}
	if req.PickupDate.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_date is required"})
	}
	if req.QuotedPrice == nil || req.QuotedPrice.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quoted_price must be a non-negative amount"})
	}

	var merchant model.Merchant
	if err := db.First(&merchant, req.MerchantID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
	}

	validUntil := time.Now().UTC().Add(7 * 24 * time.Hour)
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}

	quote := model.ShippingQuote{
		QuoteNumber:       model.GenerateNumber("SQ"),
		ShippingCompanyID: companyID(c),
		MerchantID:        req.MerchantID,

		PickupCity:   req.PickupCity,
		DeliveryCity: req.DeliveryCity,
		Distance:     req.Distance,

		PackageWeight:     req.PackageWeight,
		PackageDimensions: req.PackageDimensions,
		PackageType:       req.PackageType,

		ServiceType:  fallback(req.ServiceType, "standard"),
		PickupDate:   req.PickupDate,
		DeliveryDate: req.DeliveryDate,

		QuotedPrice: *req.QuotedPrice,
		Currency:    fallback(req.Currency, "SAR"),
		ValidUntil:  validUntil,

		Status: model.QuotePending,
		Notes:  req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&quote).Error; err != nil {
		log.Error("Failed to create shipping quote", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create shipping quote"})
	}

	log.Info("Shipping quote created",
		zap.Uint("quote_id", quote.ID),
		zap.String("number", quote.QuoteNumber))

	return c.JSON(http.StatusCreated, echo.Map{"shipping_quote": quote})
}

// SendShippingQuote marks a pending quote as sent to the merchant
func SendShippingQuote(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var quote model.ShippingQuote
	if err := db.Where("shipping_company_id = ?", companyID(c)).
		First(&quote, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping quote not found"})
	}

	if !quote.Status.CanTransitionTo(model.QuoteSent) {
		prometheus.InvalidTransitionCounter.WithLabelValues("shipping_quote").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "only pending quotes can be sent, current status is " + string(quote.Status),
		})
	}

	now := time.Now().UTC()
	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&quote).Updates(map[string]interface{}{
		"status":  model.QuoteSent,
		"sent_at": now,
	}).Error; err != nil {
		log.Error("Failed to send shipping quote", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send quote"})
	}

	return c.JSON(http.StatusOK, echo.Map{"shipping_quote": quote})
}

// ShippingDriverRequest represents a shipping driver create or update request
type ShippingDriverRequest struct {
	DriverName      string   `json:"driver_name"`
	DriverPhone     string   `json:"driver_phone"`
	DriverLicense   string   `json:"driver_license"`
	VehicleType     string   `json:"vehicle_type"`
	VehiclePlate    string   `json:"vehicle_plate"`
	VehicleCapacity *float64 `json:"vehicle_capacity"`
	CurrentLocation string   `json:"current_location"`
	IsActive        *bool    `json:"is_active"`
}

// ListShippingDrivers returns the company's drivers
func ListShippingDrivers(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var drivers []model.ShippingDriver
	if err := db.Where("shipping_company_id = ?", companyID(c)).Order("id").Find(&drivers).Error; err != nil {
		log.Error("Failed to list drivers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list drivers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"drivers": drivers, "count": len(drivers)})
}

// CreateShippingDriver adds a driver to the company's fleet
func CreateShippingDriver(c echo.Context) error {
	log := logger.FromContext(c)

	var req ShippingDriverRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.DriverName == "" || req.DriverPhone == "" || req.DriverLicense == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "driver_name, driver_phone and driver_license are required"})
	}
	if req.VehicleType == "" || req.VehiclePlate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_type and vehicle_plate are required"})
	}

	driver := model.ShippingDriver{
		ShippingCompanyID: companyID(c),
		DriverName:        req.DriverName,
		DriverPhone:       req.DriverPhone,
		DriverLicense:     req.DriverLicense,
		VehicleType:       req.VehicleType,
		VehiclePlate:      req.VehiclePlate,
		CurrentLocation:   req.CurrentLocation,
		IsActive:          true,
	}
	if req.VehicleCapacity != nil {
		driver.VehicleCapacity = *req.VehicleCapacity
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

// UpdateShippingDriver updates one of the company's drivers
func UpdateShippingDriver(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var driver model.ShippingDriver
	if err := db.Where("shipping_company_id = ?", companyID(c)).
		First(&driver, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
	}

	var req ShippingDriverRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.DriverName != "" {
		updates["driver_name"] = req.DriverName
	}
	if req.DriverPhone != "" {
		updates["driver_phone"] = req.DriverPhone
	}
	if req.DriverLicense != "" {
		updates["driver_license"] = req.DriverLicense
	}
	if req.VehicleType != "" {
		updates["vehicle_type"] = req.VehicleType
	}
	if req.VehiclePlate != "" {
		updates["vehicle_plate"] = req.VehiclePlate
	}
	if req.VehicleCapacity != nil {
		updates["vehicle_capacity"] = *req.VehicleCapacity
	}
	if req.CurrentLocation != "" {
		updates["current_location"] = req.CurrentLocation
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

// DeleteShippingDriver removes one of the company's drivers
func DeleteShippingDriver(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var driver model.ShippingDriver
	if err := db.Where("shipping_company_id = ?", companyID(c)).
		First(&driver, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&driver).Error; err != nil {
		log.Error("Failed to delete driver", zap.Error(err), zap.Uint("driver_id", driver.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete driver"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "driver deleted"})
}
