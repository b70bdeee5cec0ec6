package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/veda/internal/brain"
	"github.com/rahul/veda/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// HistoryStore feeds the Responder with prior turns.
type HistoryStore interface {
	AddMessage(sessionID, role, content string) error
	GetHistory(sessionID string, limit int) ([]llms.MessageContent, error)
}

const chatHistoryLimit = 10

// Chat adapts free-text messages to the coordinator. Confirmation
// phrases go through the token path; objectives that produce no tool
// actions fall back to a conversational Responder reply.
type Chat struct {
	Coordinator *Coordinator
	Responder   brain.Responder
	History     HistoryStore
	Logger      *observability.Logger
}

func (c *Chat) Handle(ctx context.Context, sessionID, text string) (string, error) {
	req := Request{SessionID: sessionID, Objective: text, AutoExecute: true}

	// "confirm <token>" releases a previously blocked objective. The
	// token is extracted here and validated by the manager; a wrong
	// token just runs the text as a new objective.
	normalized := strings.ToLower(strings.TrimSpace(text))
	if rest, ok := strings.CutPrefix(normalized, "confirm "); ok {
		req.ConfirmToken = strings.TrimSpace(rest)
	}

	outcome := c.Coordinator.Run(ctx, req)
	if c.Logger != nil {
		c.Logger.LogPlan(sessionID, len(outcome.Plan.Steps), outcome.Objective)
	}

	if outcome.ConfirmationRequired {
		return fmt.Sprintf(
			"That looks risky (%s). Reply 'confirm %s' to proceed with: %s",
			outcome.Risk.Level, outcome.ConfirmationToken, outcome.Objective,
		), nil
	}

	if len(outcome.ProposedActions) > 0 {
		return outcome.SupervisorSummary, nil
	}

	// Nothing actionable in the objective: have the Responder answer
	// conversationally with session history for context.
	if c.Responder == nil {
		return outcome.SupervisorSummary, nil
	}

	var history []llms.MessageContent
	if c.History != nil {
		history, _ = c.History.GetHistory(sessionID, chatHistoryLimit)
	}
	reply, provider, model, err := c.Responder.Generate(ctx, text, history)
	if err != nil {
		return "", err
	}
	if c.Logger != nil {
		c.Logger.LogLLM(sessionID, text, reply, provider, model)
	}
	if c.History != nil {
		_ = c.History.AddMessage(sessionID, "human", text)
		_ = c.History.AddMessage(sessionID, "ai", reply)
	}
	return reply, nil
}
