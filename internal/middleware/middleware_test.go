package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"farmstore/internal/session"
	"farmstore/internal/storage"
)

const testSecret = "test-secret"

func signed(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func adminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuth(testSecret), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAdminAuth(t *testing.T) {
	r := adminRouter()

	cases := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{"missing", "/admin", "", http.StatusUnauthorized},
		{"malformed", "/admin", "Token abc", http.StatusUnauthorized},
		{"wrong role", "/admin", "Bearer " + signed(t, "customer"), http.StatusForbidden},
		{"admin header", "/admin", "Bearer " + signed(t, "admin"), http.StatusNoContent},
		{"admin query", "/admin?token=" + signed(t, "admin"), "", http.StatusNoContent},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.url, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestShopperIssuesAndReusesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(storage.NewMemoryKV(), nil, 5)
	r := gin.New()
	r.Use(Shopper(manager, false))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSession(c).ID)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	issued := rec.Body.String()
	if !session.ValidID(issued) {
		t.Fatalf("expected a fresh session id, got %q", issued)
	}
	if rec.Header().Get(SessionHeader) != issued {
		t.Fatalf("expected session header to echo the id")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: issued})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != issued {
		t.Fatalf("expected cookie session reused, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(SessionHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() == "not-a-uuid" {
		t.Fatalf("malformed ids must be replaced")
	}
}

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/checkout", NewRateLimiter(2).Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other clients must not be throttled, got %d", rec.Code)
	}
}
