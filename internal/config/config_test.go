package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadFrom(map[string]string{
		"CURSOR_API_KEY": "key_123",
		"DATABASE_PATH":  filepath.Join(tmpDir, "db", "calls.db"),
		"EXPORT_DIR":     filepath.Join(tmpDir, "exports"),
		"HTTP_TIMEOUT":   "45s",
		"SMTP_USERNAME":  "relay@example.com",
		"SMTP_PASSWORD":  "app-password",
	})
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.APIKey != "key_123" {
		t.Errorf("APIKey = %q, want key_123", cfg.APIKey)
	}
	if cfg.BaseURL != "https://api.cursor.com" {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v, want 45s", cfg.HTTPTimeout)
	}
	if cfg.ProxyAddr != ":8001" {
		t.Errorf("ProxyAddr = %q, want :8001", cfg.ProxyAddr)
	}
	if cfg.SpendAlertPercent != 80 {
		t.Errorf("SpendAlertPercent = %v, want 80", cfg.SpendAlertPercent)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "db")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "exports")); err != nil {
		t.Errorf("export directory not created: %v", err)
	}
}

func TestLoadFrom_MailDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadFrom(map[string]string{
		"CURSOR_API_KEY": "key_123",
		"DATABASE_PATH":  filepath.Join(tmpDir, "calls.db"),
		"SMTP_USERNAME":  "relay@example.com",
		"SMTP_PASSWORD":  "app-password",
	})
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	m := cfg.Mail
	if m.Host != "smtp.gmail.com" || m.Port != 587 {
		t.Errorf("relay = %s:%d, want smtp.gmail.com:587", m.Host, m.Port)
	}
	if m.FromAddress != "relay@example.com" {
		t.Errorf("FromAddress = %q, want username", m.FromAddress)
	}
	if m.ReplyToName != m.FromName {
		t.Errorf("ReplyToName = %q, want %q", m.ReplyToName, m.FromName)
	}
	if m.ReplyToAddress != "relay@example.com" {
		t.Errorf("ReplyToAddress = %q, want relay@example.com", m.ReplyToAddress)
	}
	if !m.Configured() {
		t.Error("Configured() = false, want true")
	}
}

func TestLoadFrom_MissingAPIKey(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("LoadFrom() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoadFrom_InvalidDuration(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"CURSOR_API_KEY": "key_123",
		"HTTP_TIMEOUT":   "soon",
	})
	if err == nil {
		t.Error("LoadFrom() should fail on an invalid duration")
	}
}

func TestMail_Configured(t *testing.T) {
	tests := []struct {
		name string
		mail Mail
		want bool
	}{
		{"Complete", Mail{Host: "h", Username: "u", Password: "p"}, true},
		{"NoPassword", Mail{Host: "h", Username: "u"}, false},
		{"NoHost", Mail{Username: "u", Password: "p"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mail.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

func TestGetConfigDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	want := filepath.Join(home, ".config", "team-usage-dashboard")
	if got := getConfigDir(); got != want {
		t.Errorf("getConfigDir() = %q, want %q", got, want)
	}
}
