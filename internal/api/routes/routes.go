package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/api/handlers"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/api/middleware"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/config"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/deception"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/decoy"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
)

// Register migrates the honeypot tables and wires every route. detector may
// be nil, in which case all traffic scores as normal.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, detector deception.Detector, gen *decoy.Generator) error {
	store := services.NewHoneypotStore(db)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	alerts := services.NewAlertService(cfg.Alerts.URLs)
	if alerts.Enabled() {
		logger.Log().WithField("destinations", len(cfg.Alerts.URLs)).Info("anomaly alerts enabled")
	}
	engine := deception.NewEngine(store, detector, gen, deception.EngineConfig{
		RateWindow:  cfg.Detection.RateWindow,
		EvalTimeout: cfg.Detection.EvalTimeout,
	})
	forensic := deception.NewForensicLogger(store, alerts, cfg.Detection.EvalTimeout)
	auth := services.NewAuthService(cfg.Admin)
	if !auth.Enabled() {
		logger.Log().Warn("admin API disabled: set MIRAGE_ADMIN_PASSWORD_HASH and MIRAGE_JWT_SECRET")
	}

	honeypot := handlers.NewHoneypotHandler(engine, forensic)
	decoys := handlers.NewDecoyHandler(gen, store)
	admin := handlers.NewAdminHandler(store, auth, services.NewExportService(cfg.ExportDir))
	system := handlers.NewSystemHandler(store)

	router.NoRoute(handlers.NotFound)

	// Attacker-facing surface.
	router.GET("/", system.Root)
	router.GET("/api/status", system.Status)
	router.GET("/api/tables", decoys.Tables)
	router.GET("/download/*filename", decoys.Download)
	router.POST("/api/login", honeypot.Login)
	router.POST("/api/query", honeypot.Query)

	router.POST("/api/admin/login", admin.Login)

	protected := router.Group("/api")
	protected.Use(middleware.AdminAuth(auth), middleware.RequireRole("admin"))
	{
		protected.GET("/alerts", admin.Alerts)
		protected.GET("/blocklist", admin.Blocklist)
		protected.POST("/actions/block", admin.Block)
		protected.DELETE("/actions/block/:ip", admin.Unblock)
		protected.POST("/decoy/generate", decoys.Generate)
		protected.GET("/export_report", admin.ExportReport)
		protected.GET("/admin/health", handlers.HealthHandler)
		protected.GET("/admin/metrics", gin.WrapH(promhttp.Handler()))
	}

	return nil
}
