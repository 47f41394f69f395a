package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrateOnStart bool

	// CORSOrigin is the single browser origin allowed to call the API
	// with credentials. Empty disables CORS headers entirely.
	CORSOrigin string

	// If true, /readyz returns 503 unless the database is configured
	// and reachable.
	ReadinessRequireDB bool

	// If true, ATRIUM_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and
	// session tokens are digested with HMAC instead of plain SHA-256.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	env := EnvString("ATRIUM_ENV", "development")

	logFormat := "pretty"
	corsOrigin := "http://localhost:5173"
	if env == "production" {
		logFormat = "json"
		corsOrigin = ""
	}

	return Config{
		Env:      env,
		HTTPAddr: EnvString("ATRIUM_HTTP_ADDR", "0.0.0.0:3000"),

		LogLevel:  EnvString("ATRIUM_LOG_LEVEL", "info"),
		LogFormat: EnvString("ATRIUM_LOG_FORMAT", logFormat),

		ReadHeaderTimeout: EnvDuration("ATRIUM_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("ATRIUM_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("ATRIUM_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("ATRIUM_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("ATRIUM_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL:    EnvString("ATRIUM_DATABASE_URL", ""),
		DBMaxConns:     EnvInt32("ATRIUM_DB_MAX_CONNS", 10),
		DBMinConns:     EnvInt32("ATRIUM_DB_MIN_CONNS", 0),
		MigrateOnStart: EnvBool("ATRIUM_DB_MIGRATE", true),

		CORSOrigin: EnvString("ATRIUM_FRONTEND_URL", corsOrigin),

		ReadinessRequireDB: EnvBool("ATRIUM_READINESS_REQUIRE_DB", false),

		RequireTokenHMAC: EnvBool("ATRIUM_REQUIRE_TOKEN_HMAC", false),
	}
}
