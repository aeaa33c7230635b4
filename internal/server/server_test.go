package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/config"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/decoy"
)

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	gen, err := decoy.NewGenerator(t.TempDir(), 5)
	require.NoError(t, err)
	cfg.ExportDir = t.TempDir()
	srv, err := New(db, cfg, nil, gen)
	require.NoError(t, err)
	return srv
}

func TestNew_ServesBannerWithDecoyHeaders(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Server"), "nginx")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "Suraksha Mirage Backend")
}

func TestNew_BannerOverride(t *testing.T) {
	srv := newTestServer(t, config.Config{Banner: config.BannerConfig{Server: "Apache/2.4.41"}})

	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "Apache/2.4.41", w.Header().Get("Server"))
	assert.Equal(t, "PHP/7.4.3", w.Header().Get("X-Powered-By"))
}

func TestNew_IgnoresForwardedForWithoutTrustedProxies(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	srv.Engine.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = "192.0.2.1:4444"
	req.Header.Set("X-Forwarded-For", "10.9.8.7")
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, req)

	assert.Equal(t, "192.0.2.1", w.Body.String())
}

func TestNew_RejectsInvalidTrustedProxy(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	gen, err := decoy.NewGenerator(t.TempDir(), 5)
	require.NoError(t, err)

	_, err = New(db, config.Config{TrustedProxies: []string{"not-an-ip"}}, nil, gen)
	assert.Error(t, err)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/api/status", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
