// File: cmd/diagnostic/model_diagnostic.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/ketolab/go-ketoplanner/internal/config"
	"github.com/ketolab/go-ketoplanner/internal/services/ai"
)

func main() {
	fmt.Println("Probing on-device model server...")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg := config.Load()

	aiConfig := ai.DefaultConfig()
	aiConfig.BaseURL = cfg.ModelBaseURL
	aiConfig.APIKey = cfg.ModelAPIKey
	aiConfig.Model = cfg.ModelName
	aiConfig.Timeout = 30 * time.Second

	provider := ai.NewOpenAIProvider(aiConfig)

	ctx := context.Background()
	if !provider.IsAvailable(ctx) {
		log.Fatalf("Model server at %s is not available", aiConfig.BaseURL)
	}
	fmt.Printf("Model server reachable at %s (model: %s)\n", aiConfig.BaseURL, aiConfig.Model)

	ctx, cancel := context.WithTimeout(ctx, aiConfig.Timeout)
	defer cancel()

	reply, err := provider.Respond(ctx, aiConfig.Instructions, "Suggest one keto snack under 5g net carbs.")
	if err != nil {
		log.Fatalf("Completion failed: %v", err)
	}

	fmt.Printf("Response: %s\n", reply)
}
