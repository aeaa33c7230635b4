package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
)

// panicRoute serves one request that panics with msg and returns the
// response plus everything logged while handling it.
func panicRoute(t *testing.T, verbose bool, msg string, header http.Header) (*httptest.ResponseRecorder, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger.Init(true, buf)

	router := gin.New()
	router.Use(RequestID(), Recovery(verbose))
	router.POST("/api/query", func(c *gin.Context) { panic(msg) })

	req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, buf.String()
}

func TestRecovery_VerboseIncludesStack(t *testing.T) {
	w, out := panicRoute(t, true, "detector exploded", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Internal server error"}`, w.Body.String())
	assert.Contains(t, out, "PANIC: detector exploded")
	assert.Contains(t, out, "Stacktrace:")
	assert.Contains(t, out, "request_id")
}

func TestRecovery_QuietModeHidesStackAndDetail(t *testing.T) {
	w, out := panicRoute(t, false, "store gone", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "store gone")
	assert.Contains(t, out, "PANIC: store gone")
	assert.NotContains(t, out, "Stacktrace:")
}

func TestRecovery_RedactsCredentials(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer admin-jwt")
	h.Set("Cookie", "session=abc")
	_, out := panicRoute(t, true, "boom", h)

	assert.NotContains(t, out, "admin-jwt")
	assert.NotContains(t, out, "session=abc")
	assert.Contains(t, out, "<redacted>")
}
