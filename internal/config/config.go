// Package config loads application configuration from environment
// variables once at startup. The resulting Config is passed by value to
// the components that need it; nothing reads the environment afterwards.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Superuser holds the credentials used by the one-shot /users/init
// bootstrap endpoint.
type Superuser struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Cache configures the optional Redis response cache for the superuser
// read endpoints. Disabled unless CACHE_ENABLED=true and REDIS_ADDR set.
type Cache struct {
	Enabled   bool
	RedisAddr string
	TTL       time.Duration
	Prefix    string
}

// Config holds all runtime configuration values. Strings for identifiers
// and secrets, ints for durations and costs.
type Config struct {
	Env          string    // application environment ("local", "dev", "test", "prod")
	Port         string    // HTTP port to listen on
	DBUser       string    // database username (prod only)
	DBPass       string    // database password (optional)
	DBHost       string    // database host address (prod only)
	DBPort       string    // database port number (prod only)
	DBName       string    // database name (prod only)
	JWTSecret    string    // secret used to sign access tokens
	AccessTTLMin int       // access token time-to-live in minutes
	BcryptCost   int       // bcrypt cost for password hashing
	Superuser    Superuser // default superuser for /users/init
	AMQPURL      string    // RabbitMQ URL for lifecycle events (empty disables)
	Cache        Cache     // optional Redis response cache
}

// AccessTTL returns the token TTL as a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMin) * time.Minute
}

// UseMemoryStore reports whether this environment runs on the in-memory
// store instead of MySQL.
func (c Config) UseMemoryStore() bool {
	return c.Env == "local" || c.Env == "dev" || c.Env == "test"
}

// Load reads configuration values from environment variables and returns
// a Config. Missing required variables cause a fatal log message. The
// database variables are only required outside the memory-store
// environments.
func Load() Config {
	cfg := Config{
		Env:          getenv("ENV", "local"),
		Port:         must("APP_PORT"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: getenvInt("ACCESS_TOKEN_TTL_MIN", 30),
		BcryptCost:   getenvInt("BCRYPT_COST", 10),
		Superuser: Superuser{
			Username: getenv("DEFAULT_SUPERUSER_USERNAME", "superuser"),
			Email:    getenv("DEFAULT_SUPERUSER_EMAIL", "super.user@example.com"),
			FullName: getenv("DEFAULT_SUPERUSER_FULL_NAME", "Super User"),
			Password: getenv("DEFAULT_SUPERUSER_PASSWORD", "passw0rd"),
		},
		AMQPURL: os.Getenv("RABBITMQ_URL"),
		Cache: Cache{
			Enabled:   os.Getenv("CACHE_ENABLED") == "true",
			RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
			TTL:       time.Duration(getenvInt("CACHE_TTL_SEC", 60)) * time.Second,
			Prefix:    getenv("CACHE_PREFIX", "userdir"),
		},
	}
	if !cfg.UseMemoryStore() {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
