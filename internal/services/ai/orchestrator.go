// File: internal/services/ai/orchestrator.go
package ai

import (
	"context"
	"strings"
)

// Orchestrator provides the single logical entry point to the inference
// capability. Its only state is the immutable config and the provider
// reference, so any number of Complete calls may run concurrently: no
// lock is held across the model call and unrelated calls never block
// each other. Ordering between independent calls is the caller's
// concern.
type Orchestrator struct {
	config   *Config
	provider ModelProvider
	logger   Logger
}

func NewOrchestrator(config *Config, provider ModelProvider, logger Logger) (*Orchestrator, error) {
	if config == nil {
		return nil, NewConfigError("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	if provider == nil {
		return nil, NewConfigError("model provider is required")
	}
	if logger == nil {
		return nil, NewConfigError("logger is required")
	}

	return &Orchestrator{
		config:   config,
		provider: provider,
		logger:   logger,
	}, nil
}

// Complete submits one prompt to a session scoped to this call and
// returns the model's answer verbatim. Conversation context lives in
// the store, not in the model session, so sessions are never reused.
//
// Fails with an UNAVAILABLE error before any session is constructed if
// the capability is not ready, and with a COMPLETION error for any
// failure of the call itself. The configured timeout bounds the whole
// call, since the capability has no built-in bound.
func (o *Orchestrator) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", NewValidationError("complete", "prompt cannot be empty")
	}

	if !o.provider.IsAvailable(ctx) {
		o.logger.Warn("completion rejected, model unavailable", "model", o.config.Model)
		return "", NewUnavailableError("complete")
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var reply string
	retryCfg := &RetryConfig{MaxAttempts: o.config.MaxRetries, Delay: o.config.RetryDelay}
	err := RetryWithBackoff(ctx, retryCfg, func(ctx context.Context) error {
		r, err := o.provider.Respond(ctx, o.config.Instructions, prompt)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})

	if err != nil {
		if IsUnavailable(err) {
			return "", err
		}
		o.logger.Error("completion failed", "model", o.config.Model, "error", err.Error())
		return "", NewCompletionError("complete", "model call failed", err)
	}

	return reply, nil
}
