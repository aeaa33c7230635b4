package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/decoy"
)

func setupDecoyRouter(t *testing.T) (*gin.Engine, *decoy.Generator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_, store := OpenTestDB(t)
	gen, err := decoy.NewGenerator(t.TempDir(), 11)
	require.NoError(t, err)
	h := NewDecoyHandler(gen, store)

	r := gin.New()
	r.GET("/api/tables", h.Tables)
	r.GET("/download/*filename", h.Download)
	r.POST("/api/decoy/generate", h.Generate)
	r.NoRoute(NotFound)
	return r, gen
}

func TestDecoyTables(t *testing.T) {
	r, _ := setupDecoyRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tables", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var tables map[string]decoy.Table
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	assert.Equal(t, 200, tables["employees"].Count)
	assert.Equal(t, "http://example.com/download/credentials_backup.zip", tables["credentials"].DownloadURL)
}

func TestDecoyDownload(t *testing.T) {
	r, gen := setupDecoyRouter(t)
	require.NoError(t, gen.EnsureAll(context.Background()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/decoy_employees.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "decoy_employees.csv")
	assert.Contains(t, w.Body.String(), "id,name,email")

	for _, path := range []string{"/download/missing.csv", "/download/..%2f..%2fetc%2fpasswd", "/download/.hidden"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "available_endpoints")
	}
}

func TestDecoyGenerate(t *testing.T) {
	r, _ := setupDecoyRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/decoy/generate", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status string   `json:"status"`
		Files  []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{decoy.EmployeesFile, decoy.ProjectsFile, decoy.CredentialsFile}, resp.Files)
}
