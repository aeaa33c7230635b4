package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	Debug        bool
	DataDir      string
	DatabasePath string
	LogDir       string
	DecoyDir     string
	ExportDir    string

	// TrustedProxies lists proxies allowed to set X-Forwarded-For. Empty means
	// the socket peer is always the source identifier.
	TrustedProxies []string

	// Banner is the server fingerprint advertised on every response.
	Banner BannerConfig

	Detection DetectionConfig
	Decoy     DecoyConfig
	Admin     AdminConfig
	Alerts    AlertConfig
}

// BannerConfig overrides the Server and X-Powered-By headers. Empty fields
// keep the built-in fingerprint.
type BannerConfig struct {
	Server    string `yaml:"server"`
	PoweredBy string `yaml:"powered_by"`
}

// fileConfig is the optional YAML overlay named by MIRAGE_CONFIG_FILE.
// Environment variables win over anything set here.
type fileConfig struct {
	HTTPPort       string       `yaml:"http_port"`
	TrustedProxies []string     `yaml:"trusted_proxies"`
	NotifyURLs     []string     `yaml:"notify_urls"`
	DecoyRefresh   *string      `yaml:"decoy_refresh"`
	AdminUsername  string       `yaml:"admin_username"`
	Banner         BannerConfig `yaml:"banner"`
}

// DetectionConfig tunes the scoring pipeline.
type DetectionConfig struct {
	ModelPath   string
	RateWindow  time.Duration
	EvalTimeout time.Duration
}

// DecoyConfig controls decoy artifact authoring.
type DecoyConfig struct {
	RefreshSchedule string // cron spec; empty disables scheduled refresh
	Seed            uint64
}

// AdminConfig holds credentials for the operator API.
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt; empty disables admin login
	JWTSecret    string
	TokenTTL     time.Duration
}

// AlertConfig lists shoutrrr destinations notified on anomalous traffic.
type AlertConfig struct {
	URLs []string
}

// Load reads env vars and falls back to defaults so the honeypot can boot with zero configuration.
func Load() (Config, error) {
	dataDir := getEnv("MIRAGE_DATA_DIR", "data")

	cfg := Config{
		Environment:    getEnv("MIRAGE_ENV", "development"),
		HTTPPort:       getEnv("MIRAGE_HTTP_PORT", "5000"),
		Debug:          getBool("MIRAGE_DEBUG", false),
		DataDir:        dataDir,
		DatabasePath:   getEnv("MIRAGE_DB_PATH", filepath.Join(dataDir, "logs.db")),
		LogDir:         getEnv("MIRAGE_LOG_DIR", filepath.Join(dataDir, "logs")),
		DecoyDir:       getEnv("MIRAGE_DECOY_DIR", filepath.Join(dataDir, "decoys")),
		ExportDir:      getEnv("MIRAGE_EXPORT_DIR", filepath.Join(dataDir, "exports")),
		TrustedProxies: getList("MIRAGE_TRUSTED_PROXIES"),
		Detection: DetectionConfig{
			ModelPath:   getEnv("MIRAGE_MODEL_PATH", filepath.Join(dataDir, "if_model.json")),
			RateWindow:  60 * time.Second,
			EvalTimeout: 2 * time.Second,
		},
		Decoy: DecoyConfig{
			RefreshSchedule: getEnv("MIRAGE_DECOY_REFRESH_CRON", "@every 6h"),
		},
		Admin: AdminConfig{
			Username:     getEnv("MIRAGE_ADMIN_USERNAME", "nextech_admin"),
			PasswordHash: os.Getenv("MIRAGE_ADMIN_PASSWORD_HASH"),
			JWTSecret:    os.Getenv("MIRAGE_JWT_SECRET"),
			TokenTTL:     12 * time.Hour,
		},
		Alerts: AlertConfig{
			URLs: getList("MIRAGE_NOTIFY_URLS"),
		},
	}

	if path := os.Getenv("MIRAGE_CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	var err error
	if cfg.Detection.EvalTimeout, err = getDuration("MIRAGE_EVAL_TIMEOUT", cfg.Detection.EvalTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Admin.TokenTTL, err = getDuration("MIRAGE_ADMIN_TOKEN_TTL", cfg.Admin.TokenTTL); err != nil {
		return Config{}, err
	}
	if raw := os.Getenv("MIRAGE_DECOY_SEED"); raw != "" {
		if cfg.Decoy.Seed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return Config{}, fmt.Errorf("parse MIRAGE_DECOY_SEED: %w", err)
		}
	}

	for _, dir := range []string{filepath.Dir(cfg.DatabasePath), cfg.DecoyDir, cfg.ExportDir, filepath.Dir(cfg.Detection.ModelPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Config{}, fmt.Errorf("ensure data directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.HTTPPort != "" && os.Getenv("MIRAGE_HTTP_PORT") == "" {
		cfg.HTTPPort = fc.HTTPPort
	}
	if len(fc.TrustedProxies) > 0 && os.Getenv("MIRAGE_TRUSTED_PROXIES") == "" {
		cfg.TrustedProxies = fc.TrustedProxies
	}
	if len(fc.NotifyURLs) > 0 && os.Getenv("MIRAGE_NOTIFY_URLS") == "" {
		cfg.Alerts.URLs = fc.NotifyURLs
	}
	// An explicit empty string disables the refresh job.
	if fc.DecoyRefresh != nil && os.Getenv("MIRAGE_DECOY_REFRESH_CRON") == "" {
		cfg.Decoy.RefreshSchedule = *fc.DecoyRefresh
	}
	if fc.AdminUsername != "" && os.Getenv("MIRAGE_ADMIN_USERNAME") == "" {
		cfg.Admin.Username = fc.AdminUsername
	}
	cfg.Banner = fc.Banner
	return nil
}

// IsProduction reports whether the honeypot runs with production defaults.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse %s: duration must be positive", key)
	}
	return d, nil
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
