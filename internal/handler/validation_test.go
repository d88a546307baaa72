package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"marketplace-api/internal/middleware"
)

// postAs runs a handler with an authenticated role profile id in context,
// exercising the request validation that runs before any database access.
func postAs(t *testing.T, h echo.HandlerFunc, contextKey string, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextKey, uint(1))
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestCreatePartnerRequiresNameAndType(t *testing.T) {
	rec := postAs(t, CreatePartner, middleware.ContextSupplierID, `{"partner_name":"Harbor Grocers"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without partner_type, got %d", rec.Code)
	}

	rec = postAs(t, CreatePartner, middleware.ContextSupplierID, `{"partner_type":"merchant"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without partner_name, got %d", rec.Code)
	}
}

func TestCreateQuotationRequiresItems(t *testing.T) {
	rec := postAs(t, CreateQuotation, middleware.ContextSupplierID, `{"title":"Office supplies"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateQuotationRejectsBadItems(t *testing.T) {
	cases := []string{
		`{"title":"t","items":[{"product_name":"","quantity":1,"unit_price":"5.00"}]}`,
		`{"title":"t","items":[{"product_name":"Paper","quantity":0,"unit_price":"5.00"}]}`,
		`{"title":"t","items":[{"product_name":"Paper","quantity":2}]}`,
		`{"title":"t","items":[{"product_name":"Paper","quantity":2,"unit_price":"-1.00"}]}`,
	}
	for _, body := range cases {
		rec := postAs(t, CreateQuotation, middleware.ContextSupplierID, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCreateProductRequiresNameAndPrice(t *testing.T) {
	rec := postAs(t, CreateProduct, middleware.ContextSupplierID, `{"name":"Paper"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = postAs(t, CreateProduct, middleware.ContextSupplierID, `{"name":"Paper","price":"-2.00"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative price, got %d", rec.Code)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing amount", `{"payment_method":"bank_transfer"}`},
		{"zero amount", `{"amount":"0","payment_method":"bank_transfer"}`},
		{"negative amount", `{"amount":"-5.00","payment_method":"bank_transfer"}`},
		{"missing method", `{"amount":"10.00"}`},
		{"unknown state", `{"amount":"10.00","payment_method":"cash","status":"bogus"}`},
	}
	for _, tc := range cases {
		rec := postAs(t, CreatePayment, middleware.ContextMerchantID, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestCreateOrderRequiresSupplierAndItems(t *testing.T) {
	rec := postAs(t, CreateOrder, middleware.ContextMerchantID, `{"supplier_id":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = postAs(t, CreateOrder, middleware.ContextMerchantID,
		`{"items":[{"product_name":"Paper","quantity":1,"unit_price":"5.00"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without supplier_id, got %d", rec.Code)
	}
}

func TestCreateQuotationRequestValidation(t *testing.T) {
	rec := postAs(t, CreateQuotationRequest, middleware.ContextMerchantID, `{"title":"Restock"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without items, got %d", rec.Code)
	}

	rec = postAs(t, CreateQuotationRequest, middleware.ContextMerchantID,
		`{"title":"Restock","items":[{"product_name":"Paper","quantity_needed":0}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero quantity, got %d", rec.Code)
	}
}

func TestUpdateShipmentStatusRejectsUnknownStatus(t *testing.T) {
	rec := postAs(t, UpdateShipmentStatus, middleware.ContextCompanyID, `{"status":"teleported"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRespondToShippingQuoteRejectsUnknownResponse(t *testing.T) {
	rec := postAs(t, RespondToShippingQuote, middleware.ContextMerchantID, `{"response":"maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateShipmentValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing merchant", `{}`},
		{"missing pickup", `{"merchant_id":1,"delivery_address":"a","delivery_contact_name":"b","delivery_contact_phone":"c"}`},
		{"missing delivery", `{"merchant_id":1,"pickup_address":"a","pickup_contact_name":"b","pickup_contact_phone":"c"}`},
	}
	for _, tc := range cases {
		rec := postAs(t, CreateShipment, middleware.ContextCompanyID, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestCreateShippingQuoteValidation(t *testing.T) {
	rec := postAs(t, CreateShippingQuote, middleware.ContextCompanyID,
		`{"merchant_id":1,"pickup_city":"Riyadh"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without delivery city, got %d", rec.Code)
	}

	rec = postAs(t, CreateShippingQuote, middleware.ContextCompanyID,
		`{"merchant_id":1,"pickup_city":"Riyadh","delivery_city":"Jeddah","package_weight":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero weight, got %d", rec.Code)
	}
}
