package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-api/pkg/database"
)

// HealthCheck reports service and database health
func HealthCheck(c echo.Context) error {
	dbStatus := "ok"
	if db := database.GetDB(); db == nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	if dbStatus != "ok" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "degraded",
			"database": dbStatus,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
