// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const minProdSecret = 32

// appConfigKeys defines the configuration keys for PipaPal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: store_backend, mongo_uri, session_name, etc.
//   - Environment variables: PIPAPAL_STORE_BACKEND, PIPAPAL_MONGO_URI, etc.
//   - Command-line flags: --store_backend, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMemory, Desc: "Store backend: memory, mongo, postgres or sqlite"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "pipapal", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "sql_dsn", Default: "file:pipapal.db?_foreign_keys=on", Desc: "Postgres DSN or SQLite file"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "pipapal-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session lifetime"},

	{Name: "ws_token_secret", Default: "dev-only-ws-secret-0123456789ABCDEF", Desc: "HS256 secret for WebSocket auth tokens"},
	{Name: "ws_token_ttl", Default: "1h", Desc: "WebSocket auth token lifetime"},
	{Name: "ws_allowed_origins", Default: "", Desc: "Comma-separated browser origins for CORS and /ws (blank disables CORS and limits /ws to same-host origins; required in prod)"},

	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID (blank disables Google sign-in)"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL for OAuth redirects"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per client per window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login rate limit window"},

	{Name: "timeout_short", Default: "", Desc: "Deadline for single-record store calls (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "Deadline for list queries"},
	{Name: "timeout_long", Default: "", Desc: "Deadline for multi-step writes and reports"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// PIPAPAL_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PIPAPAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:  strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		MongoMaxPool:  uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPool:  uint64(appValues.Int("mongo_min_pool_size")),
		SQLDSN:        appValues.String("sql_dsn"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 7*24*time.Hour),

		WSTokenSecret:    appValues.String("ws_token_secret"),
		WSTokenTTL:       appValues.Duration("ws_token_ttl", time.Hour),
		WSAllowedOrigins: splitList(appValues.String("ws_allowed_origins")),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		BaseURL:            strings.TrimRight(appValues.String("base_url"), "/"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}
	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems that would only surface on first use (a malformed Mongo URI,
// a missing DSN, weak production secrets) are caught here.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMemory:
		if coreCfg.Env == "prod" {
			logger.Warn("memory store in production; data is lost on restart")
		}
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required for the mongo backend")
		}
	case BackendPostgres, BackendSQLite:
		if strings.TrimSpace(appCfg.SQLDSN) == "" {
			return fmt.Errorf("sql_dsn is required for the %s backend", appCfg.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown store_backend %q (want memory, mongo, postgres or sqlite)", appCfg.StoreBackend)
	}

	if coreCfg.Env == "prod" {
		if len(appCfg.SessionKey) < minProdSecret {
			return fmt.Errorf("session_key must be at least %d characters in production", minProdSecret)
		}
		if len(appCfg.WSTokenSecret) < minProdSecret {
			return fmt.Errorf("ws_token_secret must be at least %d characters in production", minProdSecret)
		}
		if len(appCfg.WSAllowedOrigins) == 0 {
			return fmt.Errorf("ws_allowed_origins is required in production")
		}
	}
	if appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret == "" {
		return fmt.Errorf("google_client_secret is required when google_client_id is set")
	}
	if appCfg.LoginRateLimit <= 0 {
		return fmt.Errorf("login_rate_limit must be positive")
	}
	return nil
}
