package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget; lookups chain paced upstream calls

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Archive access
	CDXBaseURL     string        // capture index endpoint (empty = public archive)
	WaybackBaseURL string        // capture content endpoint (empty = public archive)
	UserAgent      string        // sent on every archive request
	MaxOffsetDays  int           // half-width of the snapshot search window (default: 7)
	ArchiveDelay   time.Duration // minimum spacing between archive requests (default: 500ms)
	ArchiveTimeout time.Duration // per-request timeout for archive calls (default: 30s)

	// Rules file
	RulesFile           string        // path to the rules yaml (optional, empty = built-in defaults)
	RulesReloadInterval time.Duration // interval to reload the rules file (default: 24h)

	// Inference fallback
	InferenceEndpoint string        // text-generation endpoint (optional, empty = fallback disabled)
	InferenceAPIKey   string        // bearer token for the endpoint
	InferenceModel    string        // model identifier sent with each request
	InferenceTimeout  time.Duration // per-request timeout for inference calls (default: 15s)

	// Upstream retry
	RetryMaxAttempts  int           // attempts per upstream call (default: 3)
	RetryInitialDelay time.Duration // first backoff interval (default: 1s)
	RetryMaxDelay     time.Duration // backoff cap (default: 30s)

	// Rate limiting
	RateLimitBurst        int // token bucket capacity per client IP
	RateLimitRefillPerMin int // tokens refilled per minute per client IP

	// Memoization
	CacheEnabled bool // false => run without redis, every lookup hits upstream

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	SnapshotTTL           time.Duration // memoized snapshot lookups (default: 2160h = 90 days)
	ResolutionTTL         time.Duration // memoized date resolutions (default: 24h)

	TrustProxy bool // true => trust X-Forwarded-For headers (e.g. behind a reverse proxy)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("HINDSIGHT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("HINDSIGHT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("HINDSIGHT_REQUEST_TIMEOUT", 60*time.Second),

		// Logging
		LogLevel:  getenv("HINDSIGHT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("HINDSIGHT_PRETTY_LOG", true),

		// Archive
		CDXBaseURL:     getenv("HINDSIGHT_CDX_BASE_URL", ""),
		WaybackBaseURL: getenv("HINDSIGHT_WAYBACK_BASE_URL", ""),
		UserAgent:      getenv("HINDSIGHT_USER_AGENT", ""),
		MaxOffsetDays:  getenvInt("HINDSIGHT_MAX_OFFSET_DAYS", 7),
		ArchiveDelay:   mustDuration("HINDSIGHT_ARCHIVE_DELAY", 500*time.Millisecond),
		ArchiveTimeout: mustDuration("HINDSIGHT_ARCHIVE_TIMEOUT", 30*time.Second),

		// Rules file
		RulesFile:           getenv("HINDSIGHT_RULES_FILE", ""), // Optional, empty = built-in defaults
		RulesReloadInterval: mustDuration("HINDSIGHT_RULES_RELOAD_INTERVAL", 24*time.Hour),

		// Inference fallback
		InferenceEndpoint: getenv("HINDSIGHT_INFERENCE_ENDPOINT", ""), // Optional, empty = disabled
		InferenceAPIKey:   getenv("HINDSIGHT_INFERENCE_API_KEY", ""),
		InferenceModel:    getenv("HINDSIGHT_INFERENCE_MODEL", ""),
		InferenceTimeout:  mustDuration("HINDSIGHT_INFERENCE_TIMEOUT", 15*time.Second),

		// Upstream retry
		RetryMaxAttempts:  getenvInt("HINDSIGHT_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: mustDuration("HINDSIGHT_RETRY_INITIAL_DELAY", time.Second),
		RetryMaxDelay:     mustDuration("HINDSIGHT_RETRY_MAX_DELAY", 30*time.Second),

		// Rate limiting
		RateLimitBurst:        getenvInt("HINDSIGHT_RATE_LIMIT_BURST", 10),
		RateLimitRefillPerMin: getenvInt("HINDSIGHT_RATE_LIMIT_REFILL_PER_MIN", 30),

		// Memoization
		CacheEnabled: mustBool("HINDSIGHT_CACHE_ENABLED", true),

		// Redis settings
		RedisAddr:             getenv("HINDSIGHT_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("HINDSIGHT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("HINDSIGHT_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("HINDSIGHT_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("HINDSIGHT_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		SnapshotTTL:           mustDuration("HINDSIGHT_SNAPSHOT_TTL", 90*24*time.Hour),
		ResolutionTTL:         mustDuration("HINDSIGHT_RESOLUTION_TTL", 24*time.Hour),

		TrustProxy: mustBool("HINDSIGHT_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.CacheEnabled && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: HINDSIGHT_REDIS_PASSWORD is required when HINDSIGHT_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.MaxOffsetDays < 0 {
		panic(fmt.Sprintf("❌ FATAL: HINDSIGHT_MAX_OFFSET_DAYS must be >= 0, got %d", cfg.MaxOffsetDays))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.InferenceAPIKey != "" {
			cfgCopy.InferenceAPIKey = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
