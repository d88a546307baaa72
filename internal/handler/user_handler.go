package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

// ListUsers returns all user accounts, optionally filtered by role
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := db.Model(&model.User{})
	if role := c.QueryParam("role"); role != "" {
		if !model.Role(role).Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role filter"})
		}
		query = query.Where("role = ?", role)
	}

	var users []model.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list users"})
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// GetUser returns a single user account by id
func GetUser(c echo.Context) error {
	db := database.GetDB()

	var user model.User
	if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UpdateUserRequest represents the mutable account fields. The role is fixed
// at registration and absent here on purpose.
type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser updates the mutable fields of a user account
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var user model.User
	if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"user": user})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to update user", zap.Error(err), zap.Uint("user_id", user.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	log.Info("User updated", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// DeactivateUser soft-deletes a user account
func DeactivateUser(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var user model.User
	if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Model(&user).Update("is_active", false).Error; err != nil {
		log.Error("Failed to deactivate user", zap.Error(err), zap.Uint("user_id", user.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate user"})
	}
	if err := db.Delete(&user).Error; err != nil {
		log.Error("Failed to delete user", zap.Error(err), zap.Uint("user_id", user.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate user"})
	}

	log.Info("User deactivated", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deactivated"})
}
