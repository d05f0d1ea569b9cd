package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(apiKey string) *gin.Engine {
	router := gin.New()
	router.Use(APIKeyAuth(apiKey))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		authHeader string
		wantCode   int
	}{
		{"no key configured allows all", "", "", http.StatusOK},
		{"no key configured ignores header", "", "Bearer anything", http.StatusOK},
		{"matching token", "s3cret", "Bearer s3cret", http.StatusOK},
		{"case-insensitive scheme", "s3cret", "bearer s3cret", http.StatusOK},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"malformed header", "s3cret", "s3cret", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(tt.apiKey)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"empty", "", ""},
		{"no scheme", "abc123", ""},
		{"trailing space trimmed", "Bearer abc123 ", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(c); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
