package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/deception"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
)

// Decider evaluates a honeypot request. *deception.Engine satisfies it.
type Decider interface {
	Decide(ctx context.Context, req deception.Request, sourceID string, opts ...deception.DecideOption) deception.Verdict
}

// ForensicAppender records evaluated requests. *deception.ForensicLogger satisfies it.
type ForensicAppender interface {
	Append(ctx context.Context, rec models.LogRecord) error
}

// HoneypotHandler serves the attacker-facing endpoints.
type HoneypotHandler struct {
	engine   Decider
	forensic ForensicAppender
}

func NewHoneypotHandler(engine Decider, forensic ForensicAppender) *HoneypotHandler {
	return &HoneypotHandler{engine: engine, forensic: forensic}
}

func (h *HoneypotHandler) request(c *gin.Context) deception.Request {
	return deception.Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		UserAgent: c.Request.UserAgent(),
		Body:      ReadBody(c),
		BaseURL:   baseURL(c),
	}
}

func blocked(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"status": "blocked"})
}

// Login always fails with 401 so it reads like a real authentication
// failure, whatever the verdict.
func (h *HoneypotHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	req := h.request(c)
	v := h.engine.Decide(c.Request.Context(), req, ip, deception.WithPurpose(deception.PurposeSuspicious))
	if v.Blocked {
		blocked(c)
		return
	}
	_ = h.forensic.Append(c.Request.Context(), deception.NewLogRecord(req, ip, v))
	h.logVerdict(c, ip, v)
	c.JSON(http.StatusUnauthorized, gin.H{"status": "fail", "message": "Invalid credentials"})
}

// Query answers like a reporting API. Anomalous callers get a decoy bundle
// reference and, for SELECT-shaped queries, a fabricated row.
func (h *HoneypotHandler) Query(c *gin.Context) {
	ip := c.ClientIP()
	req := h.request(c)
	q := queryText(req.Body)
	v := h.engine.Decide(c.Request.Context(), req, ip,
		deception.WithPurpose(deception.PurposeExfiltration),
		deception.WithSQLOverride(q),
		deception.WithFabricatedRows(),
	)
	if v.Blocked {
		blocked(c)
		return
	}
	rec := deception.NewLogRecord(req, ip, v)
	rec.Payload = q
	_ = h.forensic.Append(c.Request.Context(), rec)
	h.logVerdict(c, ip, v)

	var decoy any
	if v.HasDecoy() {
		decoy = v.DecoyReference
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"result":  gin.H{"rows": v.Rows()},
		"anomaly": v.IsAnomaly,
		"decoy":   decoy,
	})
}

func (h *HoneypotHandler) logVerdict(c *gin.Context, ip string, v deception.Verdict) {
	GetLogger(c).WithFields(logrus.Fields{
		"source_ip":   ip,
		"path":        logSafe(c.Request.URL.Path),
		"anomaly":     v.IsAnomaly,
		"payload_len": v.Features.PayloadLength,
		"rpm":         v.Features.RequestsPerMinute,
	}).Debug("honeypot verdict")
}
