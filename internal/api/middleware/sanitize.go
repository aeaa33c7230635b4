package middleware

import (
	"net/http"
	"strings"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/util"
)

const maxLoggedValue = 200

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"x-access-token":      {},
}

// SanitizeHeaders returns headers fit for logging: credentials redacted,
// everything else stripped of control characters and truncated.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	out := make(map[string][]string, len(h))
	for k, vals := range h {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			out[k] = []string{"<redacted>"}
			continue
		}
		clean := make([]string, 0, len(vals))
		for _, v := range vals {
			clean = append(clean, SanitizeValue(v))
		}
		out[k] = clean
	}
	return out
}

// SanitizePath drops the query string and sanitizes the rest.
func SanitizePath(p string) string {
	if i := strings.IndexByte(p, '?'); i != -1 {
		p = p[:i]
	}
	return SanitizeValue(p)
}

// SanitizeValue strips control characters and truncates.
func SanitizeValue(v string) string {
	return util.Truncate(util.SanitizeForLog(v), maxLoggedValue)
}
