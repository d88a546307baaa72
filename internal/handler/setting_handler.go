package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"marketplace-api/internal/model"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/logger"
	"marketplace-api/prometheus"
)

// GetSettings returns the authenticated user's preferences as a key/value map
func GetSettings(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var settings []model.Setting
	if err := db.Where("user_id = ?", userID(c)).Order("key").Find(&settings).Error; err != nil {
		log.Error("Failed to load settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load settings"})
	}

	values := make(map[string]interface{}, len(settings))
	for _, s := range settings {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s.Value), &decoded); err == nil {
			values[s.Key] = decoded
		} else {
			values[s.Key] = s.Value
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"settings": values})
}

// UpdateSettings upserts the given preferences for the authenticated user.
// Keys not present in the request are left untouched.
func UpdateSettings(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()
	uid := userID(c)

	var req map[string]interface{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one setting is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	for key, value := range req {
		stored, ok := value.(string)
		if !ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "setting " + key + " is not serializable"})
			}
			stored = string(encoded)
		}

		setting := model.Setting{UserID: uid, Key: key, Value: stored}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&setting).Error; err != nil {
			log.Error("Failed to save setting", zap.Error(err), zap.String("key", key))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save settings"})
		}
	}

	log.Info("Settings updated", zap.Uint("user_id", uid), zap.Int("keys", len(req)))
	return c.JSON(http.StatusOK, echo.Map{"message": "settings saved"})
}
