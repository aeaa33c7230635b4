package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/deception"
)

func bodyContext(t *testing.T, contentType string, body []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c
}

func TestReadBody_JSON(t *testing.T) {
	body := ReadBody(bodyContext(t, "application/json; charset=utf-8", []byte(`{"q":"x"}`)))

	sb, ok := body.(deception.StructuredBody)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"q": "x"}, sb.Value)
	assert.Equal(t, `{"q":"x"}`, string(sb.Raw))
}

func TestReadBody_JSONNumbersSurviveNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"id":12345678901234567890}`, `{"id":12345678901234567890}`},
		{`{"id":1e2}`, `{"id":1e2}`},
		{`{"amount":1.10, "cur":"EUR"}`, `{"amount":1.10,"cur":"EUR"}`},
	}
	for _, tt := range tests {
		body := ReadBody(bodyContext(t, "application/json", []byte(tt.in)))
		p, err := deception.Normalize(body)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Text)
		assert.Equal(t, len(tt.want), len(p.Text))
	}
}

func TestReadBody_TrailingDataIsRaw(t *testing.T) {
	body := ReadBody(bodyContext(t, "application/json", []byte(`{"q":"x"} {"q":"y"}`)))
	assert.Equal(t, deception.RawBody{Data: []byte(`{"q":"x"} {"q":"y"}`)}, body)
}

func TestReadBody_MalformedJSONIsRaw(t *testing.T) {
	body := ReadBody(bodyContext(t, "application/json", []byte(`{"q":`)))
	assert.Equal(t, deception.RawBody{Data: []byte(`{"q":`)}, body)
}

func TestReadBody_FormKeepsOrder(t *testing.T) {
	body := ReadBody(bodyContext(t, "application/x-www-form-urlencoded", []byte("username=admin&password=p%40ss&remember=")))

	assert.Equal(t, deception.FormBody{Fields: []deception.FormField{
		{Key: "username", Value: "admin"},
		{Key: "password", Value: "p@ss"},
		{Key: "remember", Value: ""},
	}}, body)
}

func TestReadBody_BadFormEscapeIsRaw(t *testing.T) {
	body := ReadBody(bodyContext(t, "application/x-www-form-urlencoded", []byte("q=%zz")))
	assert.Equal(t, deception.RawBody{Data: []byte("q=%zz")}, body)
}

func TestReadBody_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user", "root"))
	require.NoError(t, mw.WriteField("cmd", "id"))
	require.NoError(t, mw.Close())

	body := ReadBody(bodyContext(t, mw.FormDataContentType(), buf.Bytes()))

	assert.Equal(t, deception.FormBody{Fields: []deception.FormField{
		{Key: "cmd", Value: "id"},
		{Key: "user", Value: "root"},
	}}, body)
}

func TestReadBody_PlainTextAndEmpty(t *testing.T) {
	assert.Equal(t, deception.RawBody{Data: []byte("hello")}, ReadBody(bodyContext(t, "text/plain", []byte("hello"))))
	assert.Equal(t, deception.RawBody{Data: []byte{}}, ReadBody(bodyContext(t, "", nil)))
}

func TestQueryText(t *testing.T) {
	assert.Equal(t, "SELECT 1", queryText(deception.StructuredBody{Value: map[string]any{"q": "SELECT 1"}}))
	assert.Equal(t, "42", queryText(deception.StructuredBody{Value: map[string]any{"q": float64(42)}}))
	assert.Equal(t, "12345678901234567890", queryText(deception.StructuredBody{Value: map[string]any{"q": json.Number("12345678901234567890")}}))
	assert.Equal(t, `{"x":1}`, queryText(deception.StructuredBody{Value: map[string]any{"x": 1.0}, Raw: []byte(`{"x":1}`)}))
	assert.Equal(t, "abc", queryText(deception.FormBody{Fields: []deception.FormField{{Key: "a", Value: "1"}, {Key: "q", Value: "abc"}}}))
	assert.Equal(t, "", queryText(deception.FormBody{}))
	assert.Equal(t, "DROP TABLE x", queryText(deception.RawBody{Data: []byte("DROP TABLE x")}))
	assert.Equal(t, "", queryText(nil))
}

func TestBaseURL(t *testing.T) {
	c := bodyContext(t, "", nil)
	assert.Equal(t, "http://example.com", baseURL(c))
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://example.com", baseURL(c))
	c.Request.Header.Set("X-Forwarded-Proto", "gopher")
	assert.True(t, strings.HasPrefix(baseURL(c), "http://"))
}
