package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDecoyHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DecoyHeaders(DefaultBanner()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nginx/1.18.0 (Ubuntu)", w.Header().Get("Server"))
	assert.Equal(t, "PHP/7.4.3", w.Header().Get("X-Powered-By"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestDecoyHeaders_EmptyBannerOmitted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DecoyHeaders(BannerConfig{}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, w.Header().Get("Server"))
	assert.Empty(t, w.Header().Get("X-Powered-By"))
}

func TestSanitizeHelpers(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("User-Agent", "sqlmap\r\n/1.0")

	out := SanitizeHeaders(h)
	assert.Equal(t, []string{"<redacted>"}, out["Authorization"])
	assert.Equal(t, []string{"sqlmap /1.0"}, out["User-Agent"])
	assert.Nil(t, SanitizeHeaders(nil))

	assert.Equal(t, "/api/query", SanitizePath("/api/query?q=1"))
	assert.Len(t, SanitizeValue(strings.Repeat("a", 500)), maxLoggedValue)
}
