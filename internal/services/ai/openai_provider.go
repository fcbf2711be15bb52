// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to an OpenAI-compatible model server (a locally
// hosted one in the default configuration). The client is constructed
// once; every Respond call builds its own request, so calls share no
// mutable state.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// IsAvailable probes the model server. A short deadline keeps the probe
// from hanging when the server is down.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Respond submits one prompt under the given system instructions and
// returns the model's single response verbatim.
func (p *OpenAIProvider) Respond(ctx context.Context, instructions, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: instructions,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
		},
	)

	if err != nil {
		return "", NewCompletionError("respond", "failed to create completion", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{
			Type:      ErrTypeCompletion,
			Operation: "respond",
			Message:   "empty completion response",
			Model:     p.config.Model,
		}
	}

	return resp.Choices[0].Message.Content, nil
}
