// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

RegisterFlags binds every setting to a flag set, and ApplyEnv fills the
rest from the environment once the flags are parsed:

	cliparse.RegisterFlags(cmd.PersistentFlags(), &cfg)
	// after parsing
	err := cliparse.ApplyEnv(&cfg)

ApplyEnv normalizes DatabaseType to "sqlite" or "postgres". Aliases such as
"postgresql" and "sqlite3" are accepted in any case.

# Config Fields

  - Port: Server listen port (default: 5001)
  - DatabaseURL / DatabaseType: sqlite (default) or postgres
  - GoogleClientID, GoogleClientSecret, GoogleCallbackURL: OAuth client
  - AllowedEmail: The single identity allowed to sign in
  - SessionSecret, SessionTTL, SecureCookies: Session cookie settings
  - SheetsCredentialsFile, SheetsClientEmail, SheetsPrivateKey: Service
    account used to read spreadsheets
  - SheetsXLSXDir: Read spreadsheets from local .xlsx files instead
  - ClientURL, ServerURL: Allowed CORS origins and redirect target

# Environment Variables

Flags fall back to environment variables:

	PORT                            → -p, --port
	DATABASE_URL                    → -d, --database-url
	DATABASE_TYPE                   → -t, --database-type
	GOOGLE_CLIENT_ID                → --google-client-id
	GOOGLE_CLIENT_SECRET            → --google-client-secret
	GOOGLE_CALLBACK_URL             → --google-callback-url
	ALLOWED_EMAIL                   → --allowed-email
	SESSION_SECRET                  → --session-secret
	SESSION_TTL                     → --session-ttl
	SECURE_COOKIES                  → --secure-cookies
	GOOGLE_APPLICATION_CREDENTIALS  → --sheets-credentials
	GOOGLE_SHEETS_CLIENT_EMAIL
	GOOGLE_SHEETS_PRIVATE_KEY
	SHEETS_XLSX_DIR                 → --sheets-xlsx-dir
	CLIENT_URL                      → --client-url
	SERVER_URL                      → --server-url

CLI flags take precedence over environment variables. LoadDotEnv reads a
.env file first without overriding variables that are already set.

# Validation

ApplyEnv only validates database settings, so maintenance commands can
run without OAuth credentials. The server additionally calls
ValidateServer, which requires the OAuth client, ALLOWED_EMAIL,
SESSION_SECRET, and a spreadsheet source.
*/
package cliparse
