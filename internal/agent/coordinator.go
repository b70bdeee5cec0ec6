package agent

import (
	"context"

	"github.com/rahul/veda/internal/brain"
	"github.com/rahul/veda/internal/observability"
	"github.com/rahul/veda/internal/tools"
)

// Request is one coordinator invocation.
type Request struct {
	SessionID    string
	Objective    string
	AutoExecute  bool
	ConfirmToken string
}

// Outcome is the coordinator's structured response. The coordinator
// never raises: failures surface inside Validation and the per-action
// results.
type Outcome struct {
	OK                   bool                 `json:"ok"`
	Objective            string               `json:"objective"`
	Plan                 brain.ExecutionPlan  `json:"plan"`
	Risk                 brain.RiskAssessment `json:"risk"`
	Research             Research             `json:"research"`
	ProposedActions      []Action             `json:"proposed_actions"`
	ExecutionResults     []ExecutionRecord    `json:"execution_results"`
	Validation           Validation           `json:"validation"`
	Memory               MemoryReceipt        `json:"memory"`
	SupervisorSummary    string               `json:"supervisor_summary"`
	ConfirmationRequired bool                 `json:"confirmation_required"`
	ConfirmationToken    string               `json:"confirmation_token,omitempty"`
}

// Coordinator sequences one request through plan → risk gate →
// (confirmation) → research → propose → execute → validate → reflect →
// summarize. It is the session-facing entry point.
type Coordinator struct {
	Planner      *brain.Planner
	Risk         *brain.RiskEvaluator
	Confirmation *brain.ConfirmationManager
	Dispatcher   *tools.Dispatcher
	Memory       MemoryLookup
	Audit        *observability.AuditLogger
	TopK         int
}

func NewCoordinator(
	planner *brain.Planner,
	risk *brain.RiskEvaluator,
	confirmation *brain.ConfirmationManager,
	dispatcher *tools.Dispatcher,
	memory MemoryLookup,
	audit *observability.AuditLogger,
	topK int,
) *Coordinator {
	if topK <= 0 {
		topK = 5
	}
	return &Coordinator{
		Planner:      planner,
		Risk:         risk,
		Confirmation: confirmation,
		Dispatcher:   dispatcher,
		Memory:       memory,
		Audit:        audit,
		TopK:         topK,
	}
}

func (c *Coordinator) Run(ctx context.Context, req Request) Outcome {
	objective := req.Objective
	confirmed := false

	// A consumed token restores the objective that was originally
	// blocked, so confirmation cannot be used to smuggle in a different
	// request.
	if req.ConfirmToken != "" {
		if ok, restored := c.Confirmation.ConsumeToken(req.SessionID, req.ConfirmToken); ok {
			confirmed = true
			objective = restored
		}
	}

	observability.SetStatus(observability.PhasePlanning, objective)
	defer observability.SetStatus(observability.PhaseIdle, "")

	plan := c.Planner.BuildPlan(objective)
	risk := c.Risk.Evaluate(objective, plan)

	if risk.ConfirmationRequired && !confirmed {
		// Idempotent retry: an already-pending token is reused.
		token, ok := c.Confirmation.PendingToken(req.SessionID)
		if !ok {
			token = c.Confirmation.Create(req.SessionID, objective)
		}

		validation := Validation{OK: false, Summary: "Confirmation required before execution."}
		c.Audit.Write("agents.confirmation_required", map[string]any{
			"session_id": req.SessionID,
			"objective":  objective,
			"risk_level": string(risk.Level),
			"token":      token,
		})

		return Outcome{
			OK:                   true,
			Objective:            objective,
			Plan:                 plan,
			Risk:                 risk,
			ProposedActions:      []Action{},
			ExecutionResults:     []ExecutionRecord{},
			Validation:           validation,
			SupervisorSummary:    summarize(objective, plan, risk, validation, true),
			ConfirmationRequired: true,
			ConfirmationToken:    token,
		}
	}

	research := runResearch(c.Memory, req.SessionID, objective, c.TopK)
	proposed := ProposeActions(plan.Steps)

	executionResults := []ExecutionRecord{}
	if req.AutoExecute && len(proposed) > 0 {
		observability.SetStatus(observability.PhaseExecuting, objective)
		for index, action := range proposed {
			result := c.Dispatcher.Execute(ctx, req.SessionID, action.Tool, action.Action, action.Params, confirmed)
			executionResults = append(executionResults, ExecutionRecord{
				Step:   index + 1,
				Action: action,
				Result: result,
			})
		}
	}

	validation := validate(executionResults, req.AutoExecute)
	memoryOut := storeReflection(c.Memory, req.SessionID, objective, validation)
	summary := summarize(objective, plan, risk, validation, false)

	c.Audit.Write("agents.completed", map[string]any{
		"session_id":   req.SessionID,
		"objective":    objective,
		"risk_level":   string(risk.Level),
		"auto_execute": req.AutoExecute,
		"actions":      len(proposed),
		"success":      validation.SuccessCount,
		"failure":      validation.FailureCount,
	})

	return Outcome{
		OK:                true,
		Objective:         objective,
		Plan:              plan,
		Risk:              risk,
		Research:          research,
		ProposedActions:   proposed,
		ExecutionResults:  executionResults,
		Validation:        validation,
		Memory:            memoryOut,
		SupervisorSummary: summary,
	}
}
