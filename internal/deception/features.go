package deception

import (
	"context"
	"strings"
	"time"
)

// FeatureVector is the numeric summary of one request. The first five fields
// are the model input, in Slice order; NumParams is kept for the forensic
// record only.
type FeatureVector struct {
	PayloadLength     int `json:"payload_len"`
	RequestsPerMinute int `json:"reqs_per_min"`
	UserAgentFlag     int `json:"ua_flag"`
	SQLSignatureFlag  int `json:"sql_flag"`
	SpecialCharCount  int `json:"special_chars"`
	NumParams         int `json:"num_params"`
}

// Slice returns the model input vector.
func (f FeatureVector) Slice() []float64 {
	return []float64{
		float64(f.PayloadLength),
		float64(f.RequestsPerMinute),
		float64(f.UserAgentFlag),
		float64(f.SQLSignatureFlag),
		float64(f.SpecialCharCount),
	}
}

// scannerTokens identify scanning tools and automation libraries in a
// lower-cased User-Agent.
var scannerTokens = []string{
	"curl", "sqlmap", "nmap", "nikto", "masscan",
	"python-requests", "go-http-client", "wget",
	"bot", "scanner",
}

// sqlSignatures are matched against the upper-cased payload.
var sqlSignatures = []string{"--", " OR ", "AND 1=1", "UNION SELECT", "SELECT *", "DROP TABLE", ";--", "1=1"}

const specialChars = "\"'`;-=()[]{}<>"

// IsScannerUserAgent reports whether ua names a known scanning tool.
func IsScannerUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, tok := range scannerTokens {
		if strings.Contains(ua, tok) {
			return true
		}
	}
	return false
}

// HasSQLSignature reports whether s contains a SQL injection literal.
func HasSQLSignature(s string) bool {
	if s == "" {
		return false
	}
	up := strings.ToUpper(s)
	for _, sig := range sqlSignatures {
		if strings.Contains(up, sig) {
			return true
		}
	}
	return false
}

// CountSpecialChars counts runes of s drawn from the suspicious set.
func CountSpecialChars(s string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			n++
		}
	}
	return n
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Extractor computes feature vectors. It holds no state of its own; the only
// time-varying input is the rate window behind the tracker.
type Extractor struct {
	rate   *RateTracker
	window time.Duration
}

// NewExtractor returns an Extractor counting request rate over window.
func NewExtractor(rate *RateTracker, window time.Duration) *Extractor {
	return &Extractor{rate: rate, window: window}
}

// Extract builds the feature vector for req. The vector is always usable;
// a non-nil error is an *ExtractionError saying the body fell back to raw.
func (e *Extractor) Extract(ctx context.Context, req Request, sourceID string) (FeatureVector, error) {
	fv, _, err := e.extract(ctx, req, sourceID)
	return fv, err
}

func (e *Extractor) extract(ctx context.Context, req Request, sourceID string) (FeatureVector, Payload, error) {
	payload, err := Normalize(req.Body)
	fv := e.fromPayload(req.UserAgent, payload)
	if e.rate != nil {
		fv.RequestsPerMinute = e.rate.CountRecentRequests(ctx, sourceID, e.window)
	}
	return fv, payload, err
}

func (e *Extractor) fromPayload(ua string, p Payload) FeatureVector {
	return FeatureVector{
		PayloadLength:    len(p.Text),
		UserAgentFlag:    flag(IsScannerUserAgent(ua)),
		SQLSignatureFlag: flag(HasSQLSignature(p.Text)),
		SpecialCharCount: CountSpecialChars(p.Text),
		NumParams:        p.NumParams,
	}
}
