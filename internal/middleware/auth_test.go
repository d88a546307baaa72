package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"marketplace-api/internal/model"
	"marketplace-api/pkg/config"
	"marketplace-api/pkg/jwtutil"
)

func setupJWT(t *testing.T) {
	t.Helper()
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:       "test-signing-key",
		ExpirationHours:  1,
		ResetTokenExpiry: time.Hour,
	})
}

func runMiddleware(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, reached
}

func TestAuthenticateMissingHeader(t *testing.T) {
	setupJWT(t)

	rec, reached := runMiddleware(Authenticate, "")
	if reached {
		t.Fatal("handler should not run without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	setupJWT(t)

	for _, header := range []string{"Bearer", "Token abc", "abc"} {
		rec, reached := runMiddleware(Authenticate, header)
		if reached {
			t.Fatalf("handler should not run with header %q", header)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	setupJWT(t)

	rec, reached := runMiddleware(Authenticate, "Bearer not.a.valid.token")
	if reached {
		t.Fatal("handler should not run with an invalid token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateSetsPrincipal(t *testing.T) {
	setupJWT(t)

	token, err := jwtutil.GenerateToken(42, "user@example.com", "merchant")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(func(c echo.Context) error {
		if got := c.Get(ContextUserID).(uint); got != 42 {
			t.Errorf("expected user id 42 in context, got %d", got)
		}
		if got := c.Get(ContextRole).(string); got != "merchant" {
			t.Errorf("expected role merchant in context, got %s", got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	setupJWT(t)

	token, err := jwtutil.GenerateToken(42, "user@example.com", "merchant")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	rec, reached := runMiddleware(RequireRole(model.RoleSupplier), "Bearer "+token)
	if reached {
		t.Fatal("handler should not run for the wrong role")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "supplier") {
		t.Errorf("expected error to name the required role, got %s", rec.Body.String())
	}
}

func TestRequireRoleRejectsMissingToken(t *testing.T) {
	setupJWT(t)

	rec, reached := runMiddleware(RequireRole(model.RoleMerchant), "")
	if reached {
		t.Fatal("handler should not run without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
