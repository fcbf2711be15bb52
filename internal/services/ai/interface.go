// File: internal/services/ai/interface.go
package ai

import "context"

// ModelProvider is the inference capability: an availability probe plus
// a single-shot respond call. Implementations must be safe for
// concurrent use.
type ModelProvider interface {
	IsAvailable(ctx context.Context) bool
	Respond(ctx context.Context, instructions, prompt string) (string, error)
}

// Logger defines the logging interface used by the AI services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
