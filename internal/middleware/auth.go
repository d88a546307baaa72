package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/jwtutil"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

// Context keys set by the auth middleware
const (
	ContextUserID     = "user_id"
	ContextEmail      = "email"
	ContextRole       = "role"
	ContextSupplierID = "supplier_id"
	ContextMerchantID = "merchant_id"
	ContextCompanyID  = "shipping_company_id"
)

// Authenticate validates the bearer token and stores the authenticated
// principal (user id, email, role) in the Echo context.
func Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, httpErr := resolveClaims(c)
		if httpErr != nil {
			return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		return next(c)
	}
}

// RequireRole validates the bearer token, checks that the caller holds the
// expected role, and resolves the caller's role profile. The profile ID is
// stored in the context under the role-specific key. A user of the correct
// role without a profile row is rejected, never auto-created.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			claims, httpErr := resolveClaims(c)
			if httpErr != nil {
				return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
			}

			if claims.Role != string(role) {
				log.Warn("Role mismatch",
					zap.String("expected", string(role)),
					zap.String("actual", claims.Role),
					zap.Uint("user_id", claims.UserID))
				prometheus.RecordAuthError("wrong_role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "this endpoint is restricted to " + string(role) + " accounts"})
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextRole, claims.Role)

			db := database.GetDB()

			switch role {
			case model.RoleSupplier:
				var supplier model.Supplier
				if err := db.Where("user_id = ?", claims.UserID).First(&supplier).Error; err != nil {
					log.Warn("Supplier profile not found", zap.Uint("user_id", claims.UserID))
					prometheus.RecordAuthError("profile_not_found")
					return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier profile not found"})
				}
				c.Set(ContextSupplierID, supplier.ID)
			case model.RoleMerchant:
				var merchant model.Merchant
				if err := db.Where("user_id = ?", claims.UserID).First(&merchant).Error; err != nil {
					log.Warn("Merchant profile not found", zap.Uint("user_id", claims.UserID))
					prometheus.RecordAuthError("profile_not_found")
					return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant profile not found"})
				}
				c.Set(ContextMerchantID, merchant.ID)
			case model.RoleShipping:
				var company model.ShippingCompany
				if err := db.Where("user_id = ?", claims.UserID).First(&company).Error; err != nil {
					log.Warn("Shipping company profile not found", zap.Uint("user_id", claims.UserID))
					prometheus.RecordAuthError("profile_not_found")
					return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping company profile not found"})
				}
				c.Set(ContextCompanyID, company.ID)
			}

			return next(c)
		}
	}
}

func resolveClaims(c echo.Context) (*jwtutil.UserClaims, *echo.HTTPError) {
	log := logger.FromContext(c)

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		log.Warn("Missing authorization header")
		prometheus.RecordAuthError("missing_token")
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		log.Warn("Invalid authorization header format")
		prometheus.RecordAuthError("invalid_header")
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format, expected Bearer token")
	}

	claims, err := jwtutil.ValidateToken(parts[1])
	if err != nil {
		log.Warn("Invalid or expired token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	return claims, nil
}
