// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

// DefaultInstructions is the fixed system prompt for every completion
// session. It is set once at startup and read-only afterwards.
const DefaultInstructions = `You are a concise keto assistant. Keep meals under 20g net carbs.
Avoid sugar, grains, starchy vegetables. Prefer whole foods.
Keep answers short.`

type Config struct {
	// Model Endpoint Configuration
	BaseURL string // OpenAI-compatible endpoint of the local model server
	APIKey  string // Local servers typically ignore this, but the client requires one
	Model   string

	// Session Configuration
	Instructions string // System instructions, constant for the process lifetime

	// Performance Configuration
	Timeout    time.Duration // Upper bound on a single completion call
	MaxRetries int
	RetryDelay time.Duration

	// Model Parameters
	Temperature float32
	TopP        float32
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("MODEL_BASE_URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("MODEL_NAME is required")
	}
	if c.Instructions == "" {
		return fmt.Errorf("model instructions are required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://127.0.0.1:11434/v1",
		APIKey:       "on-device",
		Model:        "llama3.2",
		Instructions: DefaultInstructions,
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		RetryDelay:   2 * time.Second,
		Temperature:  0.2,
		TopP:         0.9,
	}
}
