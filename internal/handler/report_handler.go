package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketplace-api/internal/middleware"
	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

// ReportRequest represents a report generation request
type ReportRequest struct {
	ReportType  string     `json:"report_type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
}

// CreateSupplierReport computes and stores a sales or order report for the
// authenticated supplier
func CreateSupplierReport(c echo.Context) error {
	return createReport(c, model.RoleSupplier, supplierID(c))
}

// ListSupplierReports returns the supplier's stored reports
func ListSupplierReports(c echo.Context) error {
	return listReports(c, model.RoleSupplier, supplierID(c))
}

// GetSupplierReport returns one of the supplier's stored reports
func GetSupplierReport(c echo.Context) error {
	return getReport(c, model.RoleSupplier, supplierID(c))
}

// CreateMerchantReport computes and stores a purchasing report for the
// authenticated merchant
func CreateMerchantReport(c echo.Context) error {
	return createReport(c, model.RoleMerchant, merchantID(c))
}

// ListMerchantReports returns the merchant's stored reports
func ListMerchantReports(c echo.Context) error {
	return listReports(c, model.RoleMerchant, merchantID(c))
}

// GetMerchantReport returns one of the merchant's stored reports
func GetMerchantReport(c echo.Context) error {
	return getReport(c, model.RoleMerchant, merchantID(c))
}

func createReport(c echo.Context, role model.Role, ownerID uint) error {
	log := logger.FromContext(c)

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	switch req.ReportType {
	case "sales", "orders", "payments":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "report_type must be one of sales, orders, payments"})
	}

	data, err := computeReportData(role, ownerID, req.ReportType, req.DateFrom, req.DateTo)
	if err != nil {
		log.Error("Failed to compute report", zap.Error(err), zap.String("report_type", req.ReportType))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate report"})
	}

	report := model.Report{
		OwnerRole:   role,
		OwnerID:     ownerID,
		ReportType:  req.ReportType,
		Title:       fallback(req.Title, req.ReportType+" report"),
		Description: req.Description,
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
	}
	report.SetData(data)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&report).Error; err != nil {
		log.Error("Failed to store report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate report"})
	}

	log.Info("Report generated",
		zap.Uint("report_id", report.ID),
		zap.String("report_type", report.ReportType),
		zap.String("owner_role", string(role)))

	return c.JSON(http.StatusCreated, echo.Map{"report": report})
}

func listReports(c echo.Context, role model.Role, ownerID uint) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var reports []model.Report
	if err := db.Where("owner_role = ? AND owner_id = ?", role, ownerID).
		Order("id DESC").Find(&reports).Error; err != nil {
		log.Error("Failed to list reports", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list reports"})
	}

	return c.JSON(http.StatusOK, echo.Map{"reports": reports, "count": len(reports)})
}

func getReport(c echo.Context, role model.Role, ownerID uint) error {
	db := database.GetDB()

	var report model.Report
	if err := db.Where("owner_role = ? AND owner_id = ?", role, ownerID).
		First(&report, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"report": report})
}

// computeReportData aggregates orders and payments for the owner over the
// optional date range. Sums use decimal arithmetic end to end.
func computeReportData(role model.Role, ownerID uint, reportType string, from, to *time.Time) (map[string]interface{}, error) {
	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	ownerColumn := "supplier_id"
	if role == model.RoleMerchant {
		ownerColumn = "merchant_id"
	}

	query := db.Where(ownerColumn+" = ?", ownerID)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var orders []model.PurchaseOrder
	if err := query.Preload("Payments").Find(&orders).Error; err != nil {
		return nil, err
	}

	statusCounts := map[string]int{}
	orderTotal := decimal.Zero
	deliveredTotal := decimal.Zero
	paidTotal := decimal.Zero
	paymentCount := 0

	for _, o := range orders {
		statusCounts[string(o.Status)]++
		orderTotal = orderTotal.Add(o.TotalAmount)
		if o.Status == model.OrderDelivered {
			deliveredTotal = deliveredTotal.Add(o.TotalAmount)
		}
		for _, p := range o.Payments {
			if p.Status == model.PaymentCompleted {
				paidTotal = paidTotal.Add(p.Amount)
				paymentCount++
			}
		}
	}

	data := map[string]interface{}{
		"order_count":      len(orders),
		"orders_by_status": statusCounts,
		"order_total":      orderTotal.StringFixed(2),
	}

	switch reportType {
	case "sales":
		data["delivered_total"] = deliveredTotal.StringFixed(2)
	case "payments":
		data["completed_payment_count"] = paymentCount
		data["completed_payment_total"] = paidTotal.StringFixed(2)
		data["outstanding"] = orderTotal.Sub(paidTotal).StringFixed(2)
	}

	return data, nil
}

func merchantID(c echo.Context) uint {
	return c.Get(middleware.ContextMerchantID).(uint)
}
