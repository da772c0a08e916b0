package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Host IP for the server
	RESTPort int    // Port for the REST API
	GinMode  string // Mode for the Gin framework (e.g., release, debug, test)

	DBHost     string // Hostname or IP address for the database
	DBPort     int    // Port number for the database
	DBUser     string // Username for the database
	DBPassword string // Password for the database
	DBName     string // Name of the database

	JWTSecret             string        // Secret key for JWT signing
	JWTAlgorithm          string        // HMAC algorithm name (HS256, HS384, HS512)
	JWTExpirationDuration time.Duration // Lifetime of an issued token

	RedisServerURL                  string        // Token cache endpoint, empty disables the cache
	RedisServerGetConnectionTimeout time.Duration // Connect and pool checkout timeout for the token cache
	RedisPoolSize                   int           // Token cache pool size, 0 means one connection per auth worker
	TokenCachePrefix                string        // Key prefix for cached tokens

	PasswordHasher string // argon2 or bcrypt
	BcryptCost     int    // Cost used when PasswordHasher is bcrypt

	WorkerQueueSize    int // Mailbox capacity of each worker pool, 0 means unbounded
	CPUCount           int // Logical processors fed into the sizing policy, 0 means runtime.GOMAXPROCS(0)
	HTTPConnsPerWorker int // Open connections allowed per HTTP server worker

	LogVerbosity int // stdr verbosity level
}

// envReader accumulates lookup failures so every problem is reported at once.
type envReader struct {
	errs []error
}

// Load reads the configuration from the environment.
// It loads variables from a .env file first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	r := &envReader{}
	cfg := &Config{
		HostIP:   r.mustGetEnv("HOST_IP"),
		RESTPort: r.mustGetEnvAsInt("REST_PORT"),
		GinMode:  getEnvWithDefault("GIN_MODE", "release"),

		DBHost:     r.mustGetEnv("DB_HOST"),
		DBPort:     r.mustGetEnvAsInt("DB_PORT"),
		DBUser:     r.mustGetEnv("DB_USER"),
		DBPassword: r.mustGetEnv("DB_PASS"),
		DBName:     r.mustGetEnv("DB_NAME"),

		JWTSecret:             r.mustGetEnv("JWT_SECRET"),
		JWTAlgorithm:          getEnvWithDefault("JWT_ALGORITHM", "HS256"),
		JWTExpirationDuration: time.Duration(r.mustGetEnvAsInt("JWT_EXPIRATION_DURATION")) * time.Second,

		RedisServerURL:                  getEnvWithDefault("REDIS_SERVER_URL", ""),
		RedisServerGetConnectionTimeout: time.Duration(r.getEnvAsIntWithDefault("REDIS_SERVER_GET_CONNECTION_TIMEOUT", 2)) * time.Second,
		RedisPoolSize:                   r.getEnvAsIntWithDefault("REDIS_POOL_SIZE", 0),
		TokenCachePrefix:                getEnvWithDefault("TOKEN_CACHE_PREFIX", "token"),

		PasswordHasher: getEnvWithDefault("PASSWORD_HASHER", "argon2"),
		BcryptCost:     r.getEnvAsIntWithDefault("BCRYPT_COST", 12),

		WorkerQueueSize:    r.getEnvAsIntWithDefault("WORKER_QUEUE_SIZE", 0),
		CPUCount:           r.getEnvAsIntWithDefault("CPU_COUNT", 0),
		HTTPConnsPerWorker: r.getEnvAsIntWithDefault("HTTP_CONNS_PER_WORKER", 256),

		LogVerbosity: r.getEnvAsIntWithDefault("LOG_VERBOSITY", 0),
	}

	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MongoURI builds the connection string for the document store.
func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%s@%s:%v", c.DBUser, c.DBPassword, c.DBHost, c.DBPort)
}

// MongoDatabaseURI is MongoURI with the database name in the path, as migration tooling expects.
func (c *Config) MongoDatabaseURI() string {
	return fmt.Sprintf("%s/%s?authSource=admin", c.MongoURI(), c.DBName)
}

// Addr returns the REST listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%v", c.HostIP, c.RESTPort)
}

func (c *Config) validate() error {
	if c.JWTExpirationDuration <= 0 {
		return errors.New("JWT_EXPIRATION_DURATION must be positive")
	}
	if c.RedisServerGetConnectionTimeout <= 0 {
		return errors.New("REDIS_SERVER_GET_CONNECTION_TIMEOUT must be positive")
	}
	switch c.PasswordHasher {
	case "argon2", "bcrypt":
	default:
		return fmt.Errorf("PASSWORD_HASHER must be argon2 or bcrypt, got %q", c.PasswordHasher)
	}
	if c.WorkerQueueSize < 0 || c.CPUCount < 0 || c.RedisPoolSize < 0 {
		return errors.New("WORKER_QUEUE_SIZE, CPU_COUNT and REDIS_POOL_SIZE must not be negative")
	}
	if c.HTTPConnsPerWorker <= 0 {
		return errors.New("HTTP_CONNS_PER_WORKER must be positive")
	}
	return nil
}

// mustGetEnv retrieves the value of an environment variable or records an error if not set.
func (r *envReader) mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s is not set", key))
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer.
func (r *envReader) mustGetEnvAsInt(key string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s is not set", key))
		return 0
	}
	return r.atoi(key, valueStr)
}

// getEnvAsIntWithDefault retrieves an integer environment variable or returns a default value if not set.
func (r *envReader) getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	return r.atoi(key, valueStr)
}

func (r *envReader) atoi(key, valueStr string) int {
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s must be an integer: %w", key, err))
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
