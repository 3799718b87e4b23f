package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/auth"
)

func newAuthRouter(t *testing.T, cfg auth.TokenConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireAuth(cfg), func(c *gin.Context) {
		uid, ok := UserIDFromContext(c)
		if !ok || uid != 5 {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuth_SetsUserID(t *testing.T) {
	cfg := auth.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}
	tok, err := auth.CreateToken(5, cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	r := newAuthRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set(UserIDHeader, "5")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	r := newAuthRouter(t, auth.TokenConfig{Secret: "secret", Expiry: time.Hour})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_RejectsMismatchedUserID(t *testing.T) {
	cfg := auth.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}
	tok, err := auth.CreateToken(5, cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	r := newAuthRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set(UserIDHeader, "6")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
