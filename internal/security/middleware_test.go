package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"newsfeed/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(10), 5)

	ip1 := "192.168.1.1"
	limiter1 := limiter.GetLimiter(ip1)
	limiter2 := limiter.GetLimiter(ip1)

	if limiter1 != limiter2 {
		t.Error("Expected same limiter for same IP")
	}

	ip2 := "192.168.1.2"
	limiter3 := limiter.GetLimiter(ip2)

	if limiter1 == limiter3 {
		t.Error("Expected different limiters for different IPs")
	}
}

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(InputValidationMiddleware())
	router.GET("/articles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/articles/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.DELETE("/preferences/:category", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestInputValidationMiddleware_QueryParams(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{"no params", "/articles", http.StatusOK},
		{"valid limit", "/articles?limit=20", http.StatusOK},
		{"negative limit", "/articles?limit=-1", http.StatusBadRequest},
		{"non-numeric limit", "/articles?limit=abc", http.StatusBadRequest},
		{"valid offset", "/articles?offset=0", http.StatusOK},
		{"non-numeric offset", "/articles?offset=x", http.StatusBadRequest},
		{"valid min_relevance", "/articles?min_relevance=0.7", http.StatusOK},
		{"min_relevance above 1", "/articles?min_relevance=1.5", http.StatusBadRequest},
		{"min_relevance not a number", "/articles?min_relevance=high", http.StatusBadRequest},
		{"valid read_status", "/articles?read_status=true", http.StatusOK},
		{"invalid read_status", "/articles?read_status=yes", http.StatusBadRequest},
		{"valid category", "/articles?category=technology", http.StatusOK},
		{"invalid category chars", "/articles?category=tech%20news!", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", tt.url, nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d for %s, got %d", tt.expected, tt.url, w.Code)
			}
		})
	}
}

func TestInputValidationMiddleware_PathParams(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name     string
		method   string
		url      string
		expected int
	}{
		{"numeric id", "GET", "/articles/42", http.StatusOK},
		{"non-numeric id", "GET", "/articles/abc", http.StatusBadRequest},
		{"valid category", "DELETE", "/preferences/sports", http.StatusOK},
		{"category with underscore", "DELETE", "/preferences/world_news", http.StatusOK},
		{"category with invalid chars", "DELETE", "/preferences/Sports!", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.url, nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d for %s %s, got %d", tt.expected, tt.method, tt.url, w.Code)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// One request allowed, no refill within the test window.
	limiter := NewRateLimiter(rate.Limit(0.001), 1)
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected first request to pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected second request to be limited, got %d", w.Code)
	}
}

func TestRateLimitMiddleware_PerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	limiter := NewRateLimiter(rate.Limit(0.001), 1)
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Exhaust the first IP.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	router.ServeHTTP(w, req)

	// A different IP still gets through.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected different IP to be allowed, got %d", w.Code)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestSizeMiddleware(10))
	router.POST("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/", nil)
	req.ContentLength = 100
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413 for oversized request, got %d", w.Code)
	}
}

func TestSetupSecurityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.SecurityConfig{
		EnableRateLimit:       true,
		RateLimitPerSecond:    5.0,
		RateLimitBurst:        10,
		EnableCORS:            true,
		AllowedOrigins:        []string{"http://localhost:3000"},
		EnableSecurityHeaders: true,
		MaxRequestSize:        1024,
		EnableRequestID:       true,
	}
	router := gin.New()
	SetupSecurityMiddleware(router, &cfg)

	disabled := config.SecurityConfig{MaxRequestSize: 1024}
	router2 := gin.New()
	SetupSecurityMiddleware(router2, &disabled)
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"forwarded single", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "1.2.3.4"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request, _ = http.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}

			if got := getClientIP(c); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestIsValidCategoryName(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"technology", true},
		{"world_news", true},
		{"top-stories", true},
		{"", false},
		{"Sports", false},
		{"tech news", false},
		{"cat!", false},
	}

	for _, tt := range tests {
		if got := isValidCategoryName(tt.input); got != tt.expected {
			t.Errorf("isValidCategoryName(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
