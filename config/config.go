package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	// Redis (album cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MySQL (library pool)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Catalog gateway
	CatalogBaseURL     string
	CatalogSearchLimit int
	CatalogTimeout     time.Duration

	// AI suggestion service (OpenAI-compatible chat API)
	AIBaseURL     string
	AIKey         string
	AIModel       string
	AIMaxTokens   int
	AITemperature float64
	AITimeout     time.Duration

	// Discovery engine
	AttemptBudget int

	// Library pool source file
	LibraryPath string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "shuffle"),

		CatalogBaseURL:     getEnv("CATALOG_API_URL", "https://itunes.apple.com"),
		CatalogSearchLimit: getEnvInt("CATALOG_SEARCH_LIMIT", 5),
		CatalogTimeout:     time.Duration(getEnvInt("CATALOG_TIMEOUT_SECONDS", 10)) * time.Second,

		AIBaseURL:     getEnv("AI_API_URL", "https://api.openai.com/v1"),
		AIKey:         os.Getenv("AI_API_KEY"),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AIMaxTokens:   getEnvInt("AI_MAX_TOKENS", 256),
		AITemperature: getEnvFloat("AI_TEMPERATURE", 1.0),
		AITimeout:     time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,

		AttemptBudget: getEnvInt("DISCOVERY_ATTEMPT_BUDGET", 18),

		LibraryPath: getEnv("LIBRARY_PATH", "library.json"),
	}
}
