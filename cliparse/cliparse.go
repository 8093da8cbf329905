package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/danielhkuo/applicant-reviewer/db"
)

const (
	DefaultPort       = 5001
	DefaultSessionTTL = 7 * 24 * time.Hour
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Identity provider and allow-list
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	AllowedEmail       string

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	// Spreadsheet source: a service account, or a directory of .xlsx files
	SheetsCredentialsFile string
	SheetsClientEmail     string
	SheetsPrivateKey      string
	SheetsXLSXDir         string

	ClientURL string
	ServerURL string
}

// RegisterFlags binds every config flag to cfg. Values left at their zero
// value are filled from the environment by ApplyEnv.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")

	fs.StringVar(&cfg.GoogleClientID, "google-client-id", "", "OAuth client ID")
	fs.StringVar(&cfg.GoogleClientSecret, "google-client-secret", "", "OAuth client secret (prefer env)")
	fs.StringVar(&cfg.GoogleCallbackURL, "google-callback-url", "", "OAuth callback URL")
	fs.StringVar(&cfg.AllowedEmail, "allowed-email", "", "The only email allowed to sign in")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Sliding session lifetime")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", false, "Mark cookies Secure (HTTPS only)")

	fs.StringVar(&cfg.SheetsCredentialsFile, "sheets-credentials", "", "Service account JSON key file")
	fs.StringVar(&cfg.SheetsXLSXDir, "sheets-xlsx-dir", "", "Read spreadsheets from .xlsx files in this directory")

	fs.StringVar(&cfg.ClientURL, "client-url", "", "Browser client origin")
	fs.StringVar(&cfg.ServerURL, "server-url", "", "Public server origin")
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv fills unset fields from environment variables and applies
// defaults.
func ApplyEnv(cfg *Config) error {
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return fmt.Errorf("%w (use sqlite or postgres)", err)
	}
	cfg.DatabaseType = string(dialect)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if dialect == db.Postgres {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:applicant-reviewer.db"
	}

	setFromEnv(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setFromEnv(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setFromEnv(&cfg.GoogleCallbackURL, "GOOGLE_CALLBACK_URL")
	setFromEnv(&cfg.AllowedEmail, "ALLOWED_EMAIL")
	setFromEnv(&cfg.SessionSecret, "SESSION_SECRET")
	setFromEnv(&cfg.SheetsCredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setFromEnv(&cfg.SheetsClientEmail, "GOOGLE_SHEETS_CLIENT_EMAIL")
	setFromEnv(&cfg.SheetsPrivateKey, "GOOGLE_SHEETS_PRIVATE_KEY")
	setFromEnv(&cfg.SheetsXLSXDir, "SHEETS_XLSX_DIR")
	setFromEnv(&cfg.ClientURL, "CLIENT_URL")
	setFromEnv(&cfg.ServerURL, "SERVER_URL")

	if cfg.SessionTTL == 0 {
		if raw := os.Getenv("SESSION_TTL"); raw != "" {
			ttl, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("invalid SESSION_TTL env variable: %w", err)
			}
			cfg.SessionTTL = ttl
		} else {
			cfg.SessionTTL = DefaultSessionTTL
		}
	}
	if cfg.SessionTTL < 0 {
		return errors.New("session TTL must be positive")
	}

	if !cfg.SecureCookies {
		cfg.SecureCookies = envBool("SECURE_COOKIES", false)
	}

	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	var missing []string
	for _, req := range []struct {
		name  string
		value string
	}{
		{"GOOGLE_CLIENT_ID", c.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", c.GoogleClientSecret},
		{"GOOGLE_CALLBACK_URL", c.GoogleCallbackURL},
		{"ALLOWED_EMAIL", c.AllowedEmail},
		{"SESSION_SECRET", c.SessionSecret},
	} {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return c.ValidateSheets()
}

// ValidateSheets checks that some spreadsheet source is configured.
func (c Config) ValidateSheets() error {
	if c.SheetsXLSXDir != "" || c.SheetsCredentialsFile != "" {
		return nil
	}
	if c.SheetsClientEmail != "" && c.SheetsPrivateKey != "" {
		return nil
	}
	return errors.New("spreadsheet source required: set GOOGLE_APPLICATION_CREDENTIALS, " +
		"GOOGLE_SHEETS_CLIENT_EMAIL and GOOGLE_SHEETS_PRIVATE_KEY, or SHEETS_XLSX_DIR")
}

// AllowedOrigins lists the configured browser origins for CORS.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range []string{c.ClientURL, c.ServerURL} {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func setFromEnv(dst *string, name string) {
	if *dst == "" {
		*dst = os.Getenv(name)
	}
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
