// File: internal/services/chat/controller.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/ketolab/go-ketoplanner/internal/domain"
	"github.com/ketolab/go-ketoplanner/internal/services/ai"
	"github.com/ketolab/go-ketoplanner/internal/services/conversation"
	"github.com/ketolab/go-ketoplanner/internal/services/netcarb"
)

// Controller handles one user submission end to end: persist the user
// turn, optionally run the net-carb directive, call the orchestrator,
// persist the assistant turn. A failed completion leaves the user turn
// in place with no assistant reply; nothing is rolled back.
type Controller struct {
	store        *conversation.Service
	orchestrator *ai.Orchestrator
	logger       Logger
}

func NewController(store *conversation.Service, orchestrator *ai.Orchestrator, logger Logger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if orchestrator == nil {
		return nil, fmt.Errorf("completion orchestrator is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Controller{
		store:        store,
		orchestrator: orchestrator,
		logger:       logger,
	}, nil
}

// Send processes one user submission on the given thread and returns the
// persisted assistant message. Empty or whitespace-only input is a
// silent no-op: both return values are nil.
func (c *Controller) Send(ctx context.Context, threadID uint, text string) (*domain.Message, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return nil, nil
	}

	// No completion is attempted without a persisted user turn.
	if _, err := c.store.AppendMessage(ctx, threadID, input, domain.MessageRoleUser); err != nil {
		return nil, err
	}

	reply, err := c.buildReply(ctx, input)
	if err != nil {
		return nil, err
	}

	// The thread may have been deleted while the model call was in
	// flight. Discard the reply instead of appending behind the
	// caller's back.
	exists, err := c.store.ThreadExists(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !exists {
		c.logger.Warn("discarding completion reply, thread deleted mid-flight", "thread_id", threadID)
		return nil, conversation.NewNotFoundError("send", threadID)
	}

	return c.store.AppendMessage(ctx, threadID, reply, domain.MessageRoleAssistant)
}

// buildReply routes the input through the net-carb pipeline when it is a
// directive, otherwise forwards it to the model as-is.
func (c *Controller) buildReply(ctx context.Context, input string) (string, error) {
	directive, ok := netcarb.ParseDirective(input)
	if !ok {
		return c.orchestrator.Complete(ctx, input)
	}

	net := directive.Compute()
	c.logger.Debug("net-carb directive recognized",
		"total", directive.Total, "fiber", directive.Fiber, "polyols", directive.Polyols, "net", net)

	prompt := fmt.Sprintf("Given net carbs %.1fg, suggest a matching keto snack.", net)
	answer, err := c.orchestrator.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	summary := fmt.Sprintf("Using your inputs: total=%gg, fiber=%gg, polyols=%gg → net=%.1fg.",
		directive.Total, directive.Fiber, directive.Polyols, net)
	return summary + "\n" + answer, nil
}
