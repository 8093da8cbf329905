// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// loadConfig parses args the way the root command does, then applies the
// environment.
func loadConfig(args []string) (Config, error) {
	var cfg Config
	fs := pflag.NewFlagSet("applicant-reviewer", pflag.ContinueOnError)
	RegisterFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "DATABASE_URL", "DATABASE_TYPE", "GOOGLE_CLIENT_ID",
		"GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL", "ALLOWED_EMAIL",
		"SESSION_SECRET", "SESSION_TTL", "SECURE_COOKIES",
		"GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_SHEETS_CLIENT_EMAIL",
		"GOOGLE_SHEETS_PRIVATE_KEY", "SHEETS_XLSX_DIR", "CLIENT_URL", "SERVER_URL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig_EnvVars(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("SESSION_TTL", "36h")
	t.Setenv("SECURE_COOKIES", "yes")

	cfg, err := loadConfig([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 36*time.Hour {
		t.Errorf("expected 36h TTL, got %s", cfg.SessionTTL)
	}
	if !cfg.SecureCookies {
		t.Error("expected secure cookies from env")
	}
}

func TestLoadConfig_CLIOverridesEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := loadConfig([]string{"-p", "8080", "-d", "file:test.db", "--session-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.SessionSecret != "s1" {
		t.Errorf("expected session secret from flag, got %q", cfg.SessionSecret)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected sqlite default, got %s", cfg.DatabaseType)
	}
	if cfg.DatabaseURL == "" {
		t.Error("expected default sqlite path")
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("expected default TTL, got %s", cfg.SessionTTL)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"invalid port", map[string]string{"PORT": "abc"}, nil},
		{"postgres without url", map[string]string{"DATABASE_TYPE": "postgres"}, nil},
		{"unknown database type", nil, []string{"-t", "mysql"}},
		{"postgres alias without url", map[string]string{"DATABASE_TYPE": "PostgreSQL"}, nil},
		{"bad ttl", map[string]string{"SESSION_TTL": "soon"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfig_DatabaseTypeAliases(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"postgresql", []string{"-t", "postgresql", "-d", "postgres://test"}, "postgres"},
		{"mixed case postgres", []string{"-t", "Postgres", "-d", "postgres://test"}, "postgres"},
		{"sqlite3", []string{"-t", "sqlite3"}, "sqlite"},
		{"upper sqlite", []string{"-t", "SQLite"}, "sqlite"},
		{"padded", []string{"-t", " sqlite "}, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			cfg, err := loadConfig(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.DatabaseType != tt.want {
				t.Errorf("expected %s, got %s", tt.want, cfg.DatabaseType)
			}
		})
	}
}

func TestValidateServer(t *testing.T) {
	full := Config{
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
		GoogleCallbackURL:  "http://localhost:5001/auth/google/callback",
		AllowedEmail:       "reviewer@example.com",
		SessionSecret:      "session",
		SheetsXLSXDir:      "/tmp/sheets",
	}
	if err := full.ValidateServer(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	missing := full
	missing.AllowedEmail = ""
	missing.SessionSecret = " "
	err := missing.ValidateServer()
	if err == nil {
		t.Fatal("expected error for missing settings")
	}
	if !strings.Contains(err.Error(), "ALLOWED_EMAIL") || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("error should name missing settings, got %v", err)
	}

	noSource := full
	noSource.SheetsXLSXDir = ""
	if err := noSource.ValidateServer(); err == nil {
		t.Error("expected error when no spreadsheet source is configured")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{ClientURL: "http://localhost:3000/", ServerURL: ""}
	got := cfg.AllowedOrigins()
	if len(got) != 1 || got[0] != "http://localhost:3000" {
		t.Errorf("unexpected origins %v", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ALLOWED_EMAIL=dotenv@example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// t.Setenv above registered cleanup, so godotenv may overwrite the empty value.
	os.Unsetenv("ALLOWED_EMAIL")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("ALLOWED_EMAIL"); got != "dotenv@example.com" {
		t.Errorf("expected value from .env, got %q", got)
	}
}
