package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For duration settings

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host; empty selects the in-memory store
	DBPort         string        // Database port
	DBName         string        // Database name
	JWTSecret      string        // JWT secret key
	RedisAddr      string        // Redis server address; empty disables response caching
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	IsProd         bool          // Is production environment
	RateTTL        time.Duration // Freshness window for cached mid-market rates
	StageTimeout   time.Duration // Deadline per pipeline stage
	GatewayDelay   time.Duration // Artificial latency of the simulated adapters
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:      valueOrDefault("APP_PORT", "8080"),              // Application port
		DBUser:       os.Getenv("DB_USER"),                            // Database user
		DBPassword:   os.Getenv("DB_PASSWORD"),                        // Database password
		DBHost:       os.Getenv("DB_HOST"),                            // Database host
		DBPort:       valueOrDefault("DB_PORT", "3306"),               // Database port
		DBName:       os.Getenv("DB_NAME"),                            // Database name
		JWTSecret:    os.Getenv("JWT_SECRET"),                         // JWT secret key
		RedisAddr:    os.Getenv("REDIS_ADDR"),                         // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),                         // Redis password
		RedisDB:      redisDB,                                         // Redis database number
		IsProd:       os.Getenv("IS_PROD") == "true",                  // Is production environment
		RateTTL:      durationOrDefault("RATE_TTL", 60*time.Second),   // Rate cache freshness window
		StageTimeout: durationOrDefault("STAGE_TIMEOUT", 10*time.Second), // Pipeline stage deadline
		GatewayDelay: durationOrDefault("GATEWAY_DELAY", time.Second), // Simulated adapter latency
	}
}

// valueOrDefault reads an environment variable with a fallback
func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOrDefault parses a duration environment variable with a fallback
func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
