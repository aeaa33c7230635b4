package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/api/middleware"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/models"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 1000
)

// AuditRecorder stores operator audit entries.
type AuditRecorder interface {
	LogAudit(ctx context.Context, a *models.SecurityAudit) error
}

// AdminStore is the slice of the honeypot store the operator surface uses.
type AdminStore interface {
	AuditRecorder
	RecentLogs(ctx context.Context, limit int) ([]models.LogRecord, error)
	LogsSince(ctx context.Context, since *time.Time) ([]models.LogRecord, error)
	AddBlocklistEntry(ctx context.Context, ip, reason string) (*models.BlocklistEntry, error)
	RemoveBlocklistEntry(ctx context.Context, ip string) error
	ListBlocklist(ctx context.Context) ([]models.BlocklistEntry, error)
}

// Authenticator issues operator session tokens.
type Authenticator interface {
	Login(username, password string) (string, error)
}

// ReportWriter writes forensic CSV reports.
type ReportWriter interface {
	WriteReport(logs []models.LogRecord, now time.Time) (string, error)
}

// AdminHandler is the operator surface: alerts, blocklist, reports.
type AdminHandler struct {
	store   AdminStore
	auth    Authenticator
	reports ReportWriter
}

func NewAdminHandler(store AdminStore, auth Authenticator, reports ReportWriter) *AdminHandler {
	return &AdminHandler{store: store, auth: auth, reports: reports}
}

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// recordAudit stores an audit entry for the authenticated operator. Audit
// failures are logged, never surfaced.
func recordAudit(c *gin.Context, audit AuditRecorder, action, details string) {
	if audit == nil {
		return
	}
	actor := c.GetString(middleware.SubjectKey)
	if actor == "" {
		actor = "anonymous"
	}
	if err := audit.LogAudit(c.Request.Context(), &models.SecurityAudit{Actor: actor, Action: action, Details: details}); err != nil {
		GetLogger(c).WithError(err).WithField("action", action).Warn("failed to record audit entry")
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges operator credentials for a session token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "username and password required")
		return
	}
	token, err := h.auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrAdminDisabled):
		errorJSON(c, http.StatusServiceUnavailable, "admin login is not configured")
		return
	case err != nil:
		GetLogger(c).WithField("username", logSafe(req.Username)).WithField("client", c.ClientIP()).Warn("failed admin login")
		errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "token": token})
}

// AlertView is one forensic record as rendered for operators.
type AlertView struct {
	ID        uint              `json:"id"`
	IP        string            `json:"ip"`
	Path      string            `json:"path"`
	Method    string            `json:"method"`
	UserAgent string            `json:"ua"`
	Payload   string            `json:"payload"`
	Timestamp string            `json:"timestamp"`
	Anomaly   bool              `json:"anomaly"`
	Profile   map[string]string `json:"profile"`
	DecoyFile string            `json:"decoy_file"`
}

func newAlertView(l models.LogRecord) AlertView {
	return AlertView{
		ID:        l.ID,
		IP:        l.IP,
		Path:      l.Path,
		Method:    l.Method,
		UserAgent: l.UserAgent,
		Payload:   l.Payload,
		Timestamp: l.Timestamp.UTC().Format(time.RFC3339),
		Anomaly:   l.Anomaly,
		Profile:   l.DecodedProfile(),
		DecoyFile: l.DecoyFile,
	}
}

// Alerts returns the most recent forensic records, newest first.
func (h *AdminHandler) Alerts(c *gin.Context) {
	limit := defaultAlertLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAlertLimit)
	}
	logs, err := h.store.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		GetLogger(c).WithError(err).Error("failed to query logs")
		c.JSON(http.StatusInternalServerError, []AlertView{})
		return
	}
	out := make([]AlertView, 0, len(logs))
	for _, l := range logs {
		out = append(out, newAlertView(l))
	}
	c.JSON(http.StatusOK, out)
}

type blockRequest struct {
	IP     string `json:"ip"`
	Reason string `json:"reason"`
}

// Block adds a source to the blocklist. Blocking twice is harmless.
func (h *AdminHandler) Block(c *gin.Context) {
	var req blockRequest
	_ = c.ShouldBindJSON(&req)
	ip := strings.TrimSpace(req.IP)
	if ip == "" {
		errorJSON(c, http.StatusBadRequest, "ip required")
		return
	}
	entry, err := h.store.AddBlocklistEntry(c.Request.Context(), ip, req.Reason)
	if err != nil {
		GetLogger(c).WithError(err).Error("failed to add blocklist entry")
		errorJSON(c, http.StatusInternalServerError, "db error")
		return
	}
	recordAudit(c, h.store, "block", ip)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "blocked": true, "entry": entry})
}

// Unblock removes a source from the blocklist.
func (h *AdminHandler) Unblock(c *gin.Context) {
	ip := c.Param("ip")
	err := h.store.RemoveBlocklistEntry(c.Request.Context(), ip)
	switch {
	case errors.Is(err, services.ErrBlocklistEntryNotFound):
		errorJSON(c, http.StatusNotFound, "ip not blocked")
		return
	case err != nil:
		GetLogger(c).WithError(err).Error("failed to remove blocklist entry")
		errorJSON(c, http.StatusInternalServerError, "db error")
		return
	}
	recordAudit(c, h.store, "unblock", ip)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "blocked": false})
}

// Blocklist lists every blocked source.
func (h *AdminHandler) Blocklist(c *gin.Context) {
	entries, err := h.store.ListBlocklist(c.Request.Context())
	if err != nil {
		GetLogger(c).WithError(err).Error("failed to list blocklist")
		errorJSON(c, http.StatusInternalServerError, "db error")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ExportReport writes a CSV of forensic records, optionally only those at or
// after ?since=, and sends it back. An unparseable since is ignored.
func (h *AdminHandler) ExportReport(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		if t, ok := parseSince(raw); ok {
			since = &t
		} else {
			GetLogger(c).WithField("since", logSafe(raw)).Warn("invalid since param")
		}
	}
	logs, err := h.store.LogsSince(c.Request.Context(), since)
	if err != nil {
		GetLogger(c).WithError(err).Error("failed to query logs for export")
		errorJSON(c, http.StatusInternalServerError, "db error")
		return
	}
	path, err := h.reports.WriteReport(logs, time.Now())
	if err != nil {
		GetLogger(c).WithError(err).Error("failed writing csv export")
		errorJSON(c, http.StatusInternalServerError, "export failed")
		return
	}
	recordAudit(c, h.store, "export_report", filepath.Base(path))
	c.FileAttachment(path, filepath.Base(path))
}

var sinceLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// parseSince accepts ISO-8601 timestamps; zone-less values are UTC.
func parseSince(raw string) (time.Time, bool) {
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
