// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBPath     string

	// Model server settings (OpenAI-compatible, locally hosted by default).
	ModelBaseURL    string
	ModelAPIKey     string
	ModelName       string
	ModelTimeout    time.Duration
	ModelMaxRetries int

	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "ketoplanner.db"),
		ModelBaseURL:    getEnv("MODEL_BASE_URL", "http://127.0.0.1:11434/v1"),
		ModelAPIKey:     getEnv("MODEL_API_KEY", "on-device"),
		ModelName:       getEnv("MODEL_NAME", "llama3.2"),
		ModelTimeout:    getEnvAsDuration("MODEL_TIMEOUT", 60*time.Second),
		ModelMaxRetries: getEnvAsInt("MODEL_MAX_RETRIES", 3),
		Environment:     env,
	}

	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.ModelBaseURL == "" {
			missing = append(missing, "MODEL_BASE_URL")
		}
		if cfg.ModelName == "" {
			missing = append(missing, "MODEL_NAME")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration gets an env var as a duration ("60s", "2m"), with a fallback.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
