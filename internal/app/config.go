package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool

	// TokenSecret signs issued registration tokens. Loaded once here and
	// passed by reference into the pipeline; never re-read per request.
	// If empty, the server still starts but every signup request fails
	// deterministically with an internal (misconfigured) outcome.
	TokenSecret string
	TokenIssuer string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("ENROLL_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("ENROLL_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("ENROLL_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("ENROLL_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("ENROLL_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("ENROLL_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("ENROLL_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("ENROLL_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("ENROLL_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("ENROLL_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("ENROLL_READINESS_REQUIRE_DB", false),

		TokenSecret: EnvString("ENROLL_TOKEN_SECRET", ""),
		TokenIssuer: EnvString("ENROLL_TOKEN_ISSUER", "enroll"),
	}
}
