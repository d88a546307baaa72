package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-api/internal/middleware"
	"marketplace-api/internal/model"
	"marketplace-api/pkg/config"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/jwtutil"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

var authCfg *config.AuthConfig

func userID(c echo.Context) uint {
	return c.Get(middleware.ContextUserID).(uint)
}

// InitAuth provides the auth behavior flags to the auth handlers
func InitAuth(cfg *config.AuthConfig) {
	authCfg = cfg
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Phone    string     `json:"phone"`
	Role     model.Role `json:"role"`

	// Supplier profile fields
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	TaxNumber      string `json:"tax_number"`

	// Merchant profile fields
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	StoreType    string `json:"store_type"`

	// Shipping company profile fields
	LicenseNumber string `json:"license_number"`
}

// Register creates a user account together with its role profile
func Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}
	if !req.Role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be one of supplier, merchant, shipping"})
	}
	if req.Role == model.RoleShipping && req.LicenseNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "license_number is required for shipping accounts"})
	}

	db := database.GetDB()

	var existing model.User
	if err := db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		log.Warn("Registration conflict", zap.String("username", req.Username), zap.String("email", req.Email))
		prometheus.RecordAuthError("duplicate_account")
		return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already registered"})
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register user"})
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())

	// The account and its role profile are created in one transaction so a
	// profile failure never leaves an orphaned user row.
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		switch req.Role {
		case model.RoleSupplier:
			supplier := model.Supplier{
				UserID:         user.ID,
				CompanyName:    fallback(req.CompanyName, req.FullName),
				CompanyAddress: req.CompanyAddress,
				TaxNumber:      req.TaxNumber,
			}
			return tx.Create(&supplier).Error
		case model.RoleMerchant:
			merchant := model.Merchant{
				UserID:       user.ID,
				StoreName:    fallback(req.StoreName, req.FullName),
				StoreAddress: req.StoreAddress,
				StoreType:    req.StoreType,
				TaxNumber:    req.TaxNumber,
			}
			return tx.Create(&merchant).Error
		case model.RoleShipping:
			company := model.ShippingCompany{
				UserID:        user.ID,
				CompanyName:   fallback(req.CompanyName, req.FullName),
				LicenseNumber: req.LicenseNumber,
				IsActive:      true,
			}
			return tx.Create(&company).Error
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register user"})
	}

	prometheus.RegisterCounter.Inc()
	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	token, err := jwtutil.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to register user"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"token":   token,
		"user":    user,
	})
}

// LoginRequest represents a login request. Username also accepts the email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user by username or email and returns a bearer token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := db.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error; err != nil {
		log.Warn("Login failed, unknown account", zap.String("username", req.Username))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive {
		log.Warn("Login rejected for inactive account", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("inactive_account")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is deactivated"})
	}

	if !user.CheckPassword(req.Password) {
		log.Warn("Login failed, wrong password", zap.Uint("user_id", user.ID))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   token,
		"user":    user,
	})
}

// GetProfile returns the authenticated user's account and role profile
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)
	uid := userID(c)

	db := database.GetDB()

	var user model.User
	if err := db.First(&user, uid).Error; err != nil {
		log.Warn("Profile lookup failed", zap.Uint("user_id", uid))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	resp := echo.Map{"user": user}

	switch user.Role {
	case model.RoleSupplier:
		var supplier model.Supplier
		if err := db.Where("user_id = ?", uid).First(&supplier).Error; err == nil {
			resp["supplier"] = supplier
		}
	case model.RoleMerchant:
		var merchant model.Merchant
		if err := db.Where("user_id = ?", uid).First(&merchant).Error; err == nil {
			resp["merchant"] = merchant
		}
	case model.RoleShipping:
		var company model.ShippingCompany
		if err := db.Where("user_id = ?", uid).First(&company).Error; err == nil {
			resp["shipping_company"] = company
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// RequestPasswordReset issues a short-lived reset token for the given email.
// The response never reveals whether the email exists.
func RequestPasswordReset(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	resp := echo.Map{"message": "if the email is registered, a reset token has been issued"}

	db := database.GetDB()
	var user model.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("Password reset lookup failed", zap.Error(err))
		}
		return c.JSON(http.StatusOK, resp)
	}

	token, err := jwtutil.GenerateResetToken(user.ID)
	if err != nil {
		log.Error("Failed to generate reset token", zap.Error(err))
		return c.JSON(http.StatusOK, resp)
	}

	log.Info("Password reset requested", zap.Uint("user_id", user.ID))

	// TODO: deliver the token by email once an outbound mail provider is wired up
	if authCfg != nil && authCfg.ReturnResetToken {
		resp["reset_token"] = token
	}

	return c.JSON(http.StatusOK, resp)
}

// ResetPassword sets a new password given a valid reset token
func ResetPassword(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and new_password are required"})
	}

	uid, err := jwtutil.ValidateResetToken(req.Token)
	if err != nil {
		log.Warn("Invalid reset token", zap.Error(err))
		prometheus.RecordAuthError("invalid_reset_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired reset token"})
	}

	db := database.GetDB()
	var user model.User
	if err := db.First(&user, uid).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired reset token"})
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset password"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&user).Update("password_hash", user.PasswordHash).Error; err != nil {
		log.Error("Failed to store new password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset password"})
	}

	log.Info("Password reset completed", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func fallback(value, alternative string) string {
	if value != "" {
		return value
	}
	return alternative
}
