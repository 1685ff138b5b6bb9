package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 10s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StatusURL      string        // CEAC status tracker URL
	Headless       bool          // false => visible browser window (debugging)
	NavTimeout     time.Duration // timeout for page load and form fill
	SubmitTimeout  time.Duration // timeout for a CAPTCHA submission round-trip
	SessionTimeout time.Duration // idle sessions older than this are reaped
	SweepInterval  time.Duration // how often the reaper scans for idle sessions
	MaxRetries     int           // CAPTCHA retries per automatic check (total tries = retries + 1)

	SolverEndpoint string        // CAPTCHA solver URL (optional, empty = auto checks disabled)
	SolverTimeout  time.Duration // timeout per solver request

	LocationsFile  string        // path to locations.yaml (optional, empty = no validation)
	ReloadInterval time.Duration // interval to reload locations.yaml

	// Redis (optional, empty addr = history archive disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	RateLimitRPS   float64 // sustained requests per second per client IP (0 = disabled)
	RateLimitBurst int     // burst allowance per client IP
	TrustProxy     bool    // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CEAC_LISTEN_PORT", ":5000"),
		ShutdownTimeout: mustDuration("CEAC_SHUTDOWN_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("CEAC_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CEAC_PRETTY_LOG", true),

		// Browser
		StatusURL:      getenv("CEAC_STATUS_URL", ""),
		Headless:       mustBool("CEAC_HEADLESS", true),
		NavTimeout:     mustDuration("CEAC_NAV_TIMEOUT", 90*time.Second),
		SubmitTimeout:  mustDuration("CEAC_SUBMIT_TIMEOUT", 60*time.Second),
		SessionTimeout: mustDuration("CEAC_SESSION_TIMEOUT", 5*time.Minute),
		SweepInterval:  mustDuration("CEAC_SWEEP_INTERVAL", 15*time.Second),
		MaxRetries:     getenvInt("CEAC_MAX_RETRIES", 3),

		// Solver
		SolverEndpoint: getenv("CEAC_SOLVER_ENDPOINT", ""),
		SolverTimeout:  mustDuration("CEAC_SOLVER_TIMEOUT", 30*time.Second),

		// Locations file
		LocationsFile:  getenv("CEAC_LOCATIONS_FILE", ""),
		ReloadInterval: mustDuration("CEAC_RELOAD_SOURCE_INTERVAL", 24*time.Hour),

		// Redis settings
		RedisAddr:           getenv("CEAC_REDIS_ADDR", ""),
		RedisUser:           getenv("CEAC_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("CEAC_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CEAC_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),

		// Access restrictions
		RateLimitRPS:   getenvFloat("CEAC_RATE_LIMIT_RPS", 1),
		RateLimitBurst: getenvInt("CEAC_RATE_LIMIT_BURST", 5),
		TrustProxy:     mustBool("CEAC_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
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

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
