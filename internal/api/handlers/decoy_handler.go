package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/decoy"
)

// DecoyCatalog lists and resolves decoy artifacts. *decoy.Generator satisfies it.
type DecoyCatalog interface {
	Tables(baseURL string) map[string]decoy.Table
	Path(name string) (string, error)
	GenerateAll(ctx context.Context) ([]string, error)
}

// DecoyHandler serves the bait: table listings and downloads.
type DecoyHandler struct {
	catalog DecoyCatalog
	audit   AuditRecorder
}

func NewDecoyHandler(catalog DecoyCatalog, audit AuditRecorder) *DecoyHandler {
	return &DecoyHandler{catalog: catalog, audit: audit}
}

// Tables advertises the decoy tables with absolute download URLs.
func (h *DecoyHandler) Tables(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Tables(baseURL(c)))
}

// Download sends a decoy file as an attachment. Only the base name of the
// requested path is honoured.
func (h *DecoyHandler) Download(c *gin.Context) {
	name := c.Param("filename")
	path, err := h.catalog.Path(name)
	if err != nil {
		if !errors.Is(err, decoy.ErrArtifactNotFound) {
			GetLogger(c).WithError(err).Error("decoy lookup failed")
		}
		GetLogger(c).WithField("file", logSafe(name)).Warn("download requested for missing decoy")
		notFound(c)
		return
	}
	GetLogger(c).WithField("file", filepath.Base(path)).WithField("source_ip", c.ClientIP()).Info("decoy downloaded")
	c.FileAttachment(path, filepath.Base(path))
}

// Generate rewrites every decoy artifact. Admin only.
func (h *DecoyHandler) Generate(c *gin.Context) {
	files, err := h.catalog.GenerateAll(c.Request.Context())
	if err != nil {
		GetLogger(c).WithError(err).Error("decoy generation incomplete")
	}
	if files == nil {
		files = []string{}
	}
	recordAudit(c, h.audit, "decoy_generate", "")
	c.JSON(http.StatusOK, gin.H{"status": "ok", "files": files})
}
