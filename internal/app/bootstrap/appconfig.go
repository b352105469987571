// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/pipapal/internal/app/store/sqlstore"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = sqlstore.BackendPostgres
	BackendSQLite   = sqlstore.BackendSQLite
)

// AppConfig holds service-specific configuration for PipaPal.
//
// These values come from environment variables (PIPAPAL_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, logging, CORS and body
// limits.
type AppConfig struct {
	// Persistence
	StoreBackend  string // memory, mongo, postgres or sqlite
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB
	MongoMaxPool  uint64
	MongoMinPool  uint64
	SQLDSN        string // Postgres DSN or SQLite file

	// Session management
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: pipapal-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// WebSocket auth tokens
	WSTokenSecret    string
	WSTokenTTL       time.Duration
	WSAllowedOrigins []string // empty accepts any origin

	// Google OAuth; disabled when the client id is empty
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth redirects (e.g., "https://pipapal.app")
	BaseURL string

	// Login throttling
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Store deadlines; zero keeps the package defaults
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
