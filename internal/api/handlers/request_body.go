package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/deception"
)

// maxBodyBytes caps how much of an attacker's body is read and scored.
const maxBodyBytes = 1 << 20

const maxMultipartMemory = 8 << 20

var (
	errEmptyForm    = errors.New("form has no fields")
	errTrailingData = errors.New("data after JSON document")
)

// ReadBody resolves the request body into its deception.Body shape: JSON
// first, then url-encoded or multipart form, then raw bytes. Anything that
// fails to parse in its declared shape is treated as raw.
func ReadBody(c *gin.Context) deception.Body {
	if c.Request.Body == nil {
		return deception.RawBody{}
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		GetLogger(c).WithError(err).Debug("short read of request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	mediaType, params, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		if v, err := decodeJSON(raw); err == nil {
			return deception.StructuredBody{Value: v, Raw: raw}
		}
	case mediaType == "application/x-www-form-urlencoded":
		if fields, err := parseOrderedForm(string(raw)); err == nil {
			return deception.FormBody{Fields: fields}
		}
	case mediaType == "multipart/form-data" && params["boundary"] != "":
		if fields, err := parseMultipart(c.Request); err == nil {
			return deception.FormBody{Fields: fields}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	}
	return deception.RawBody{Data: raw}
}

// decodeJSON decodes a single JSON document. Numbers stay json.Number so
// they re-encode exactly as the client wrote them.
func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}

// parseOrderedForm decodes a url-encoded body keeping field order, which
// url.ParseQuery does not.
func parseOrderedForm(s string) ([]deception.FormField, error) {
	var fields []deception.FormField
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		fields = append(fields, deception.FormField{Key: key, Value: val})
	}
	if len(fields) == 0 {
		return nil, errEmptyForm
	}
	return fields, nil
}

// parseMultipart returns the text fields of a multipart body sorted by key.
// Uploaded files are not scored.
func parseMultipart(r *http.Request) ([]deception.FormField, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()
	keys := make([]string, 0, len(r.MultipartForm.Value))
	for k := range r.MultipartForm.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var fields []deception.FormField
	for _, k := range keys {
		for _, v := range r.MultipartForm.Value[k] {
			fields = append(fields, deception.FormField{Key: k, Value: v})
		}
	}
	if len(fields) == 0 {
		return nil, errEmptyForm
	}
	return fields, nil
}

// queryText picks the free-text query out of a body: the JSON "q" member,
// the "q" form field, or the whole body text when neither is present.
func queryText(body deception.Body) string {
	switch b := body.(type) {
	case deception.StructuredBody:
		if m, ok := b.Value.(map[string]any); ok {
			if q, ok := m["q"]; ok && q != nil {
				if s, ok := q.(string); ok {
					return s
				}
				return fmt.Sprint(q)
			}
		}
		return string(b.Raw)
	case deception.FormBody:
		for _, f := range b.Fields {
			if f.Key == "q" {
				return f.Value
			}
		}
		return ""
	case deception.RawBody:
		return string(b.Data)
	}
	return ""
}

// baseURL is the externally visible service root, e.g. "https://host".
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if p := c.GetHeader("X-Forwarded-Proto"); p == "https" || p == "http" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host
}
