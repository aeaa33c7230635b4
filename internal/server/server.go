package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/api/middleware"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/api/routes"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/config"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/deception"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/decoy"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP engine and shared dependencies for easier testing.
type Server struct {
	Engine *gin.Engine
	cfg    config.Config
}

// New builds the router: request-scoped logging, panic recovery, the decoy
// server banner and every honeypot route.
func New(db *gorm.DB, cfg config.Config, detector deception.Detector, gen *decoy.Generator) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	// Without trusted proxies X-Forwarded-For is ignored and the socket peer
	// is the source identifier; attackers must not pick their own.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Debug),
		middleware.RequestLogger(),
		middleware.DecoyHeaders(banner(cfg.Banner)),
	)

	if err := routes.Register(router, db, cfg, detector, gen); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}
	return &Server{Engine: router, cfg: cfg}, nil
}

func banner(override config.BannerConfig) middleware.BannerConfig {
	b := middleware.DefaultBanner()
	if override.Server != "" {
		b.Server = override.Server
	}
	if override.PoweredBy != "" {
		b.PoweredBy = override.PoweredBy
	}
	return b
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%s", s.cfg.HTTPPort))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Log().WithField("addr", ln.Addr().String()).Info("honeypot listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
