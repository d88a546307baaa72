package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marketplace-api/internal/middleware"
	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
)

// setupTestDB swaps the global database for an in-memory SQLite instance for
// the duration of one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
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
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prev := database.GetDB()
	database.SetDB(db)
	t.Cleanup(func() { database.SetDB(prev) })

	return db
}

// call runs a handler against a synthetic request. set configures path
// parameters and context values the routing middleware would normally provide.
func call(t *testing.T, h echo.HandlerFunc, method, body string, set func(c echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if set != nil {
		set(c)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %s: %v", rec.Body.String(), err)
	}
	return body
}

func idParam(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func seedQuotation(t *testing.T, db *gorm.DB, merchantID uint, status model.QuotationStatus) model.Quotation {
	t.Helper()
	quotation := model.Quotation{
		SupplierID:      1,
		MerchantID:      &merchantID,
		QuotationNumber: model.GenerateNumber("Q"),
		Title:           "Monthly restock",
		TotalAmount:     decimal.RequireFromString("135.00"),
		Currency:        "SAR",
		Status:          status,
		Items: []model.QuotationItem{
			{ProductName: "Copy paper", Quantity: 10, UnitPrice: decimal.RequireFromString("10.50"), TotalPrice: decimal.RequireFromString("105.00")},
			{ProductName: "Staplers", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00"), TotalPrice: decimal.RequireFromString("30.00")},
		},
	}
	if err := db.Create(&quotation).Error; err != nil {
		t.Fatalf("failed to seed quotation: %v", err)
	}
	return quotation
}

func TestAcceptQuotationRequiresSentStatus(t *testing.T) {
	db := setupTestDB(t)

	for _, status := range []model.QuotationStatus{
		model.QuotationDraft,
		model.QuotationAccepted,
		model.QuotationRejected,
		model.QuotationExpired,
	} {
		quotation := seedQuotation(t, db, 7, status)

		rec := call(t, AcceptQuotation, http.MethodPost, `{}`, func(c echo.Context) {
			c.Set(middleware.ContextMerchantID, uint(7))
			c.SetParamNames("id")
			c.SetParamValues(idParam(quotation.ID))
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %s: expected 400, got %d", status, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "only sent quotations") {
			t.Errorf("status %s: unexpected error body %s", status, rec.Body.String())
		}

		var reloaded model.Quotation
		if err := db.First(&reloaded, quotation.ID).Error; err != nil {
			t.Fatalf("failed to reload quotation: %v", err)
		}
		if reloaded.Status != status {
			t.Errorf("status %s: quotation moved to %s on a rejected accept", status, reloaded.Status)
		}
	}

	var orderCount int64
	db.Model(&model.PurchaseOrder{}).Count(&orderCount)
	if orderCount != 0 {
		t.Errorf("expected no orders after rejected accepts, found %d", orderCount)
	}
}

func TestAcceptQuotationSnapshotsItems(t *testing.T) {
	db := setupTestDB(t)
	quotation := seedQuotation(t, db, 7, model.QuotationSent)

	rec := call(t, AcceptQuotation, http.MethodPost,
		`{"delivery_address":"12 Harbor Rd","payment_method":"bank_transfer"}`,
		func(c echo.Context) {
			c.Set(middleware.ContextMerchantID, uint(7))
			c.SetParamNames("id")
			c.SetParamValues(idParam(quotation.ID))
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var reloaded model.Quotation
	if err := db.First(&reloaded, quotation.ID).Error; err != nil {
		t.Fatalf("failed to reload quotation: %v", err)
	}
	if reloaded.Status != model.QuotationAccepted {
		t.Errorf("expected quotation accepted, got %s", reloaded.Status)
	}

	var order model.PurchaseOrder
	if err := db.Preload("Items").Where("quotation_id = ?", quotation.ID).First(&order).Error; err != nil {
		t.Fatalf("expected an order derived from the quotation: %v", err)
	}
	if order.SupplierID != quotation.SupplierID || order.MerchantID != 7 {
		t.Errorf("order parties mismatch: supplier %d merchant %d", order.SupplierID, order.MerchantID)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("135.00")) {
		t.Errorf("expected order total 135.00, got %s", order.TotalAmount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.Items[0].ProductName != "Copy paper" || order.Items[0].Quantity != 10 ||
		!order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("first order item is not a copy of the quotation line: %+v", order.Items[0])
	}

	// Later edits to the quotation lines must not leak into the order
	if err := db.Model(&model.QuotationItem{}).
		Where("quotation_id = ?", quotation.ID).
		Update("unit_price", decimal.RequireFromString("999.99")).Error; err != nil {
		t.Fatalf("failed to edit quotation items: %v", err)
	}
	var items []model.PurchaseOrderItem
	if err := db.Where("purchase_order_id = ?", order.ID).Order("id").Find(&items).Error; err != nil {
		t.Fatalf("failed to reload order items: %v", err)
	}
	if !items[0].UnitPrice.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("order item price changed with the quotation: %s", items[0].UnitPrice)
	}
}

func TestAcceptQuotationScopedToMerchant(t *testing.T) {
	db := setupTestDB(t)
	quotation := seedQuotation(t, db, 7, model.QuotationSent)

	rec := call(t, AcceptQuotation, http.MethodPost, `{}`, func(c echo.Context) {
		c.Set(middleware.ContextMerchantID, uint(8))
		c.SetParamNames("id")
		c.SetParamValues(idParam(quotation.ID))
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another merchant's quotation, got %d", rec.Code)
	}
}

func seedOrder(t *testing.T, db *gorm.DB, merchantID uint, total string) model.PurchaseOrder {
	t.Helper()
	order := model.PurchaseOrder{
		MerchantID:    merchantID,
		SupplierID:    1,
		OrderNumber:   model.GenerateNumber("PO"),
		TotalAmount:   decimal.RequireFromString(total),
		Currency:      "SAR",
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentStatusPending,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return order
}

func TestCreatePaymentDerivesOrderPaymentStatus(t *testing.T) {
	db := setupTestDB(t)
	order := seedOrder(t, db, 7, "100.00")

	pay := func(body string) map[string]interface{} {
		rec := call(t, CreatePayment, http.MethodPost, body, func(c echo.Context) {
			c.Set(middleware.ContextMerchantID, uint(7))
			c.SetParamNames("id")
			c.SetParamValues(idParam(order.ID))
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		return decodeBody(t, rec)
	}

	if body := pay(`{"amount":"60.00","payment_method":"bank_transfer"}`); body["payment_status"] != "partial" {
		t.Errorf("after 60/100 completed expected partial, got %v", body["payment_status"])
	}

	// Pending payments never count toward the covered total
	if body := pay(`{"amount":"40.00","payment_method":"cash","status":"pending"}`); body["payment_status"] != "partial" {
		t.Errorf("pending payment moved the status to %v", body["payment_status"])
	}

	if body := pay(`{"amount":"40.00","payment_method":"cash"}`); body["payment_status"] != "paid" {
		t.Errorf("after 100/100 completed expected paid, got %v", body["payment_status"])
	}

	var reloaded model.PurchaseOrder
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("failed to reload order: %v", err)
	}
	if reloaded.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("expected stored payment_status paid, got %s", reloaded.PaymentStatus)
	}
}

func seedShipment(t *testing.T, db *gorm.DB, companyID uint, orderID *uint) model.Shipment {
	t.Helper()
	shipment := model.Shipment{
		TrackingNumber:       model.GenerateTrackingNumber(),
		ShippingCompanyID:    companyID,
		MerchantID:           7,
		OrderID:              orderID,
		PickupAddress:        "Warehouse 4",
		PickupContactName:    "Omar",
		PickupContactPhone:   "0500000001",
		PickupDate:           time.Now().UTC(),
		DeliveryAddress:      "12 Harbor Rd",
		DeliveryContactName:  "Lina",
		DeliveryContactPhone: "0500000002",
		QuotedPrice:          decimal.RequireFromString("45.00"),
		Currency:             "SAR",
		Status:               model.ShipmentPending,
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("failed to seed shipment: %v", err)
	}
	return shipment
}

func TestShipmentTimelineAppendsInOrder(t *testing.T) {
	db := setupTestDB(t)

	merchant := model.Merchant{UserID: 1, StoreName: "Harbor Grocers"}
	if err := db.Create(&merchant).Error; err != nil {
		t.Fatalf("failed to seed merchant: %v", err)
	}

	body := `{
		"merchant_id": ` + idParam(merchant.ID) + `,
		"pickup_address": "Warehouse 4", "pickup_contact_name": "Omar", "pickup_contact_phone": "0500000001",
		"pickup_date": "2026-08-28T08:00:00Z",
		"delivery_address": "12 Harbor Rd", "delivery_contact_name": "Lina", "delivery_contact_phone": "0500000002",
		"quoted_price": "45.00"
	}`
	rec := call(t, CreateShipment, http.MethodPost, body, func(c echo.Context) {
		c.Set(middleware.ContextCompanyID, uint(3))
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["shipment"].(map[string]interface{})
	shipmentID := idParam(uint(created["id"].(float64)))
	trackingNumber := created["tracking_number"].(string)

	advance := func(status, location string) {
		rec := call(t, UpdateShipmentStatus, http.MethodPut,
			`{"status":"`+status+`","location":"`+location+`"}`,
			func(c echo.Context) {
				c.Set(middleware.ContextCompanyID, uint(3))
				c.SetParamNames("id")
				c.SetParamValues(shipmentID)
			})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %s: expected 200, got %d: %s", status, rec.Code, rec.Body.String())
		}
	}
	advance("confirmed", "Warehouse 4")
	advance("picked_up", "Warehouse 4")

	rec = call(t, AddTrackingEvent, http.MethodPost,
		`{"location":"Ring road checkpoint","description":"Passed checkpoint"}`,
		func(c echo.Context) {
			c.Set(middleware.ContextCompanyID, uint(3))
			c.SetParamNames("id")
			c.SetParamValues(shipmentID)
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for tracking event, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(t, TrackShipment, http.MethodGet, "", func(c echo.Context) {
		c.SetParamNames("tracking_number")
		c.SetParamValues(trackingNumber)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from tracking, got %d", rec.Code)
	}
	history := decodeBody(t, rec)["tracking_history"].([]interface{})
	if len(history) != 4 {
		t.Fatalf("expected 4 timeline events, got %d", len(history))
	}

	wantStatuses := []string{"pending", "confirmed", "picked_up", "picked_up"}
	var prevTS time.Time
	for i, raw := range history {
		event := raw.(map[string]interface{})
		if event["status"] != wantStatuses[i] {
			t.Errorf("event %d: expected status %s, got %v", i, wantStatuses[i], event["status"])
		}
		ts, err := time.Parse(time.RFC3339Nano, event["timestamp"].(string))
		if err != nil {
			t.Fatalf("event %d: bad timestamp %v", i, event["timestamp"])
		}
		if ts.Before(prevTS) {
			t.Errorf("event %d is out of order: %s before %s", i, ts, prevTS)
		}
		prevTS = ts
	}
	if first := history[0].(map[string]interface{}); first["description"] != "Shipment registered" {
		t.Errorf("registration event was altered: %v", first["description"])
	}
}

func TestUpdateShipmentStatusRejectsSkippedStep(t *testing.T) {
	db := setupTestDB(t)
	shipment := seedShipment(t, db, 3, nil)

	rec := call(t, UpdateShipmentStatus, http.MethodPut, `{"status":"picked_up"}`, func(c echo.Context) {
		c.Set(middleware.ContextCompanyID, uint(3))
		c.SetParamNames("id")
		c.SetParamValues(idParam(shipment.ID))
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for pending -> picked_up, got %d", rec.Code)
	}

	var reloaded model.Shipment
	if err := db.First(&reloaded, shipment.ID).Error; err != nil {
		t.Fatalf("failed to reload shipment: %v", err)
	}
	if reloaded.Status != model.ShipmentPending {
		t.Errorf("rejected transition changed the status to %s", reloaded.Status)
	}
	var events int64
	db.Model(&model.ShipmentTracking{}).Where("shipment_id = ?", shipment.ID).Count(&events)
	if events != 0 {
		t.Errorf("rejected transition appended %d timeline events", events)
	}
}

func TestListSupplierShipmentsJoinsThroughOrders(t *testing.T) {
	db := setupTestDB(t)

	mine := seedOrder(t, db, 7, "50.00")
	theirs := model.PurchaseOrder{
		MerchantID: 7, SupplierID: 2,
		OrderNumber: model.GenerateNumber("PO"),
		TotalAmount: decimal.RequireFromString("20.00"),
	}
	if err := db.Create(&theirs).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	visible := seedShipment(t, db, 3, &mine.ID)
	seedShipment(t, db, 3, &theirs.ID)
	seedShipment(t, db, 3, nil)

	rec := call(t, ListSupplierShipments, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextSupplierID, uint(1))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	shipments := body["shipments"].([]interface{})
	if len(shipments) != 1 {
		t.Fatalf("expected 1 shipment for the supplier, got %d", len(shipments))
	}
	got := shipments[0].(map[string]interface{})
	if got["tracking_number"] != visible.TrackingNumber {
		t.Errorf("expected shipment %s, got %v", visible.TrackingNumber, got["tracking_number"])
	}
}

func TestListMerchantPayments(t *testing.T) {
	db := setupTestDB(t)

	mine := seedOrder(t, db, 7, "100.00")
	other := seedOrder(t, db, 8, "100.00")

	seedPayment := func(orderID uint, amount string) {
		payment := model.Payment{
			PurchaseOrderID: orderID,
			PaymentNumber:   model.GenerateNumber("PAY"),
			Amount:          decimal.RequireFromString(amount),
			PaymentMethod:   "bank_transfer",
			PaymentDate:     time.Now().UTC(),
			Status:          model.PaymentCompleted,
		}
		if err := db.Create(&payment).Error; err != nil {
			t.Fatalf("failed to seed payment: %v", err)
		}
	}
	seedPayment(mine.ID, "30.00")
	seedPayment(mine.ID, "20.00")
	seedPayment(other.ID, "99.00")

	rec := call(t, ListMerchantPayments, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextMerchantID, uint(7))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	payments := body["payments"].([]interface{})
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments for the merchant, got %d", len(payments))
	}
	// Newest first
	first := payments[0].(map[string]interface{})
	second := payments[1].(map[string]interface{})
	if first["id"].(float64) < second["id"].(float64) {
		t.Errorf("payments are not newest first: %v then %v", first["id"], second["id"])
	}
}

func TestSettingsUpsertRoundTrip(t *testing.T) {
	setupTestDB(t)

	post := func(body string) {
		rec := call(t, UpdateSettings, http.MethodPost, body, func(c echo.Context) {
			c.Set(middleware.ContextUserID, uint(5))
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	post(`{"theme":"dark","page_size":25,"notifications":{"email":true}}`)
	post(`{"theme":"light"}`)

	rec := call(t, GetSettings, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextUserID, uint(5))
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	settings := decodeBody(t, rec)["settings"].(map[string]interface{})
	if settings["theme"] != "light" {
		t.Errorf("expected theme light after upsert, got %v", settings["theme"])
	}
	if settings["page_size"] != float64(25) {
		t.Errorf("expected page_size to survive as a number, got %v", settings["page_size"])
	}
	nested, ok := settings["notifications"].(map[string]interface{})
	if !ok || nested["email"] != true {
		t.Errorf("expected nested notifications setting, got %v", settings["notifications"])
	}

	// Settings belong to one user
	rec = call(t, GetSettings, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextUserID, uint(6))
	})
	if got := decodeBody(t, rec)["settings"].(map[string]interface{}); len(got) != 0 {
		t.Errorf("expected no settings for another user, got %v", got)
	}
}

func TestPartnerLifecycle(t *testing.T) {
	setupTestDB(t)

	rec := call(t, CreatePartner, http.MethodPost,
		`{"partner_name":"Harbor Grocers","partner_type":"merchant","contact_person":"Lina"}`,
		func(c echo.Context) {
			c.Set(middleware.ContextSupplierID, uint(1))
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(t, ListPartners, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextSupplierID, uint(1))
	})
	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Fatalf("expected 1 partner, got %v", body["count"])
	}

	// Scoped to the owning supplier
	rec = call(t, ListPartners, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextSupplierID, uint(2))
	})
	if body := decodeBody(t, rec); body["count"] != float64(0) {
		t.Errorf("expected no partners for another supplier, got %v", body["count"])
	}
}

func TestGetProfileIncludesRoleProfile(t *testing.T) {
	db := setupTestDB(t)

	user := model.User{
		Username:     "amal",
		Email:        "amal@example.com",
		PasswordHash: "x",
		FullName:     "Amal S",
		Role:         model.RoleSupplier,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	supplier := model.Supplier{UserID: user.ID, CompanyName: "Amal Trading"}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatalf("failed to seed supplier: %v", err)
	}

	rec := call(t, GetProfile, http.MethodGet, "", func(c echo.Context) {
		c.Set(middleware.ContextUserID, user.ID)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	profile, ok := body["supplier"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected supplier profile in response, got %s", rec.Body.String())
	}
	if profile["company_name"] != "Amal Trading" {
		t.Errorf("unexpected company_name: %v", profile["company_name"])
	}
}

func TestHealthCheckReflectsDatabaseState(t *testing.T) {
	setupTestDB(t)

	rec := call(t, HealthCheck, http.MethodGet, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a live database, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}

	database.SetDB(nil)
	rec = call(t, HealthCheck, http.MethodGet, "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a database, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "degraded" {
		t.Errorf("expected status degraded, got %v", body["status"])
	}
	if body["database"] != "unavailable" {
		t.Errorf("expected database unavailable, got %v", body["database"])
	}
}
