package deception

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Body shapes, in the priority order the boundary resolves them.
const (
	ShapeStructured = "structured"
	ShapeForm       = "form"
	ShapeRaw        = "raw"
)

var errUnencodable = errors.New("value cannot be encoded")

// Body is a request payload resolved once at the HTTP boundary. It is one of
// StructuredBody, FormBody or RawBody.
type Body interface {
	shape() string
}

// StructuredBody is a decoded JSON document. Raw keeps the bytes it was
// decoded from so normalization can fall back to them.
type StructuredBody struct {
	Value any
	Raw   []byte
}

// FormField is one url-encoded field, kept in submission order.
type FormField struct {
	Key   string
	Value string
}

// FormBody is an application/x-www-form-urlencoded or multipart body.
type FormBody struct {
	Fields []FormField
}

// RawBody is anything else.
type RawBody struct {
	Data []byte
}

func (StructuredBody) shape() string { return ShapeStructured }
func (FormBody) shape() string       { return ShapeForm }
func (RawBody) shape() string        { return ShapeRaw }

// Payload is the normalized text of a body plus its parameter count.
type Payload struct {
	Text      string
	NumParams int
}

// ExtractionError reports that a body could not be normalized in its own
// shape and was treated as raw text instead. The Payload returned alongside
// it is always usable.
type ExtractionError struct {
	Shape string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("normalize %s body: %v", e.Shape, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Normalize turns a body into payload text. It never fails to produce a
// Payload; a non-nil error is an *ExtractionError describing the raw fallback.
func Normalize(body Body) (Payload, error) {
	switch b := body.(type) {
	case nil:
		return Payload{}, nil
	case StructuredBody:
		text, err := canonicalJSON(b.Value)
		if err != nil {
			return rawPayload(b.Raw), &ExtractionError{Shape: ShapeStructured, Err: err}
		}
		n := 1
		if m, ok := b.Value.(map[string]any); ok {
			n = len(m)
		}
		return Payload{Text: text, NumParams: n}, nil
	case FormBody:
		parts := make([]string, 0, len(b.Fields))
		for _, f := range b.Fields {
			parts = append(parts, f.Key+"="+f.Value)
		}
		return Payload{Text: strings.Join(parts, "&"), NumParams: len(b.Fields)}, nil
	case RawBody:
		return rawPayload(b.Data), nil
	default:
		return Payload{}, &ExtractionError{Shape: body.shape(), Err: fmt.Errorf("unsupported body type %T", body)}
	}
}

// canonicalJSON re-serializes v compactly with object keys sorted and
// without HTML escaping, so equal documents always measure the same.
// json.Number values are written verbatim. The output has no spaces after
// ',' or ':', so it is shorter than Python-style json.dumps output by two
// bytes per object member (less one separator); keep that in mind when comparing payload lengths
// with historical data.
func canonicalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("%w: %v", errUnencodable, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func rawPayload(data []byte) Payload {
	text := string(data)
	p := Payload{Text: text}
	if text != "" && strings.ContainsAny(text, "=&") {
		p.NumParams = strings.Count(text, "&") + 1
	}
	return p
}
