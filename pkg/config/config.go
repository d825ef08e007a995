package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j (memory + personality persistence)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// LLM gateway (OpenAI-compatible, e.g. LiteLLM)
	LLMGatewayURL string
	LLMAPIKey     string
	ModelID       string
	MaxTokens     int
	Temperature   float64

	// Hospitality providers
	ProviderBaseURL string // base URL for booking/ops provider APIs
	ProviderAPIKey  string
	ProviderTimeout time.Duration

	// Local area guide
	CityGuideURL string // area-guide page scraped for recommendations
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		Neo4jURI:        getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", "password"),
		LLMGatewayURL:   getEnv("LLM_GATEWAY_URL", "http://localhost:4000"),
		LLMAPIKey:       getEnv("LLM_API_KEY", ""),
		ModelID:         getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		MaxTokens:       getEnvInt("MAX_TOKENS", 1024),
		Temperature:     getEnvFloat("TEMPERATURE", 0.7),
		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "http://localhost:9090"),
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_MS", 30000)) * time.Millisecond,
		CityGuideURL:    getEnv("CITY_GUIDE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.LLMGatewayURL == "" {
		return fmt.Errorf("LLM_GATEWAY_URL is required")
	}
	if c.ModelID == "" {
		return fmt.Errorf("MODEL_ID is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive")
	}
	// Provider and LLM API keys are optional in development
	return nil
}

// LLMConfigured reports whether the LLM gateway has credentials set
func (c *Config) LLMConfigured() bool {
	return c.LLMGatewayURL != "" && c.ModelID != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
