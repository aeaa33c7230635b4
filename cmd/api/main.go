package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/anomaly"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/config"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/database"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/decoy"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/metrics"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/server"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/version"
)

const usage = `usage: %[1]s [command]

commands:
  (none)                  serve the honeypot
  retrain                 retrain the anomaly model and overwrite the artifact
  block <ip> [reason]     add a source to the blocklist
  unblock <ip>            remove a source from the blocklist
  hash-password <pass>    print a bcrypt hash for MIRAGE_ADMIN_PASSWORD_HASH
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Fatalf("ensure log directory: %v", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "mirage.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	defer rotator.Close()
	mw := io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(mw)
	logger.Init(cfg.Debug, mw)

	if len(os.Args) > 1 {
		if err := runCommand(cfg, os.Args[1], os.Args[2:]); err != nil {
			logger.Log().WithError(err).Fatal("command failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg); err != nil {
		logger.Log().WithError(err).Fatal("server error")
	}
}

func runCommand(cfg config.Config, cmd string, args []string) error {
	switch cmd {
	case "retrain":
		m, err := anomaly.Train(anomaly.DefaultConfig())
		if err != nil {
			return err
		}
		if err := m.Save(cfg.Detection.ModelPath); err != nil {
			return err
		}
		logger.Log().WithField("path", cfg.Detection.ModelPath).WithField("threshold", m.Threshold).Info("anomaly model retrained")
		return nil
	case "block", "unblock":
		if len(args) < 1 {
			return fmt.Errorf("%s requires an ip", cmd)
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		ctx := context.Background()
		if cmd == "unblock" {
			if err := store.RemoveBlocklistEntry(ctx, args[0]); err != nil {
				return err
			}
			logger.Log().WithField("ip", args[0]).Info("source unblocked")
			return nil
		}
		reason := ""
		if len(args) > 1 {
			reason = args[1]
		}
		entry, err := store.AddBlocklistEntry(ctx, args[0], reason)
		if err != nil {
			return err
		}
		logger.Log().WithField("ip", entry.IP).WithField("reason", entry.Reason).Info("source blocked")
		return nil
	case "hash-password":
		if len(args) != 1 {
			return fmt.Errorf("hash-password requires exactly one argument")
		}
		hash, err := services.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	default:
		fmt.Fprintf(os.Stderr, usage, filepath.Base(os.Args[0]))
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openStore(cfg config.Config) (*services.HoneypotStore, error) {
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store := services.NewHoneypotStore(db)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	logger.Log().WithField("version", version.Full()).Infof("starting %s", version.Name)
	metrics.Register(prometheus.DefaultRegisterer)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	// The model must be ready before the first request is scored.
	model, _, err := anomaly.LoadOrTrain(cfg.Detection.ModelPath, anomaly.DefaultConfig())
	if err != nil {
		return fmt.Errorf("anomaly model: %w", err)
	}

	gen, err := decoy.NewGenerator(cfg.DecoyDir, cfg.Decoy.Seed)
	if err != nil {
		return err
	}
	if err := gen.EnsureAll(ctx); err != nil {
		logger.Log().WithError(err).Warn("some decoy artifacts could not be created")
	}

	if cfg.Decoy.RefreshSchedule != "" {
		refresher, err := services.NewDecoyRefreshService(cfg.Decoy.RefreshSchedule, gen)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	srv, err := server.New(db, cfg, model, gen)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
