// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no Admin API key is configured.
var ErrMissingAPIKey = errors.New("CURSOR_API_KEY is required (set via env or .env file)")

// Config holds the application configuration.
type Config struct {
	APIKey      string        `env:"CURSOR_API_KEY"`
	BaseURL     string        `env:"ADMIN_API_BASE_URL" envDefault:"https://api.cursor.com"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`

	DatabasePath string `env:"DATABASE_PATH"`
	ExportDir    string `env:"EXPORT_DIR" envDefault:"."`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`

	ProxyAddr string `env:"PROXY_ADDR" envDefault:":8001"`
	StaticDir string `env:"STATIC_DIR" envDefault:"."`

	SpendAlertPercent float64 `env:"SPEND_ALERT_PERCENT" envDefault:"80"`

	Mail Mail
}

// Mail holds SMTP relay settings and sender defaults.
type Mail struct {
	Host           string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port           int    `env:"SMTP_PORT" envDefault:"587"`
	Username       string `env:"SMTP_USERNAME"`
	Password       string `env:"SMTP_PASSWORD"`
	FromName       string `env:"MAIL_FROM_NAME" envDefault:"Team Usage Dashboard"`
	FromAddress    string `env:"MAIL_FROM_ADDRESS"`
	ReplyToName    string `env:"MAIL_REPLY_TO_NAME"`
	ReplyToAddress string `env:"MAIL_REPLY_TO_ADDRESS"`
	TemplateDir    string `env:"MAIL_TEMPLATE_DIR"`
	DefaultSubject string `env:"MAIL_DEFAULT_SUBJECT" envDefault:"[Team Usage Dashboard] Report"`
	DashboardURL   string `env:"DASHBOARD_URL" envDefault:"http://localhost:8001/"`
	AttachmentName string `env:"MAIL_ATTACHMENT_NAME" envDefault:"team_usage_report.xlsx"`
}

// Configured reports whether relay credentials are present.
func (m Mail) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	return parse(env.Options{})
}

// LoadFrom builds a configuration from an explicit variable map, ignoring
// the process environment and .env files.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	applyDefaults(cfg)

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	if err := ensureDir(cfg.ExportDir); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(getConfigDir(), "calls.db")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(getConfigDir(), "tud.log")
	}
	if cfg.Mail.FromAddress == "" {
		cfg.Mail.FromAddress = cfg.Mail.Username
	}
	if cfg.Mail.ReplyToName == "" {
		cfg.Mail.ReplyToName = cfg.Mail.FromName
	}
	if cfg.Mail.ReplyToAddress == "" {
		cfg.Mail.ReplyToAddress = cfg.Mail.FromAddress
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "team-usage-dashboard", ".env"),
			filepath.Join(home, ".team-usage-dashboard", ".env"),
		)
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// getConfigDir returns the per-user directory for the database and logs.
func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "team-usage-dashboard")
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
