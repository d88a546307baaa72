package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DB.Host != "localhost" {
		t.Errorf("expected default DB host localhost, got %s", cfg.DB.Host)
	}
	if cfg.DB.Port != "5432" {
		t.Errorf("expected default DB port 5432, got %s", cfg.DB.Port)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default server port 8080, got %s", cfg.Server.Port)
	}
	if cfg.JWT.ExpirationHours != 24 {
		t.Errorf("expected default expiration 24h, got %d", cfg.JWT.ExpirationHours)
	}
	if cfg.JWT.ResetTokenExpiry != time.Hour {
		t.Errorf("expected default reset token expiry 1h, got %s", cfg.JWT.ResetTokenExpiry)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "marketplace_test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("PASSWORD_RESET_TOKEN_EXPIRES", "30m")
	t.Setenv("APP_ENV", "production")
	t.Setenv("RETURN_RESET_TOKEN", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DB.Host != "db.internal" {
		t.Errorf("expected DB host db.internal, got %s", cfg.DB.Host)
	}
	if cfg.DB.DBName != "marketplace_test" {
		t.Errorf("expected DB name marketplace_test, got %s", cfg.DB.DBName)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected server port 9090, got %s", cfg.Server.Port)
	}
	if cfg.JWT.ExpirationHours != 2 {
		t.Errorf("expected expiration 2h, got %d", cfg.JWT.ExpirationHours)
	}
	if cfg.JWT.ResetTokenExpiry != 30*time.Minute {
		t.Errorf("expected reset token expiry 30m, got %s", cfg.JWT.ResetTokenExpiry)
	}
	if cfg.Auth.ReturnResetToken {
		t.Error("expected reset token echo to be disabled")
	}
}

func TestReturnResetTokenDefaultsByEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Auth.ReturnResetToken {
		t.Error("expected reset token echo enabled in development")
	}

	t.Setenv("APP_ENV", "production")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.ReturnResetToken {
		t.Error("expected reset token echo disabled in production")
	}
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "marketplace",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=postgres password=secret dbname=marketplace sslmode=disable"
	if got := c.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
