package agent

import (
	"fmt"

	"github.com/rahul/veda/internal/brain"
	"github.com/rahul/veda/internal/store"
	"github.com/rahul/veda/internal/tools"
)

// MemoryLookup is the external memory collaborator: add a record, get
// ranked hits back. The sqlite keyword store satisfies it; a real vector
// store can be dropped in without touching the coordinator.
type MemoryLookup interface {
	AddMemory(sessionID, text string, metadata map[string]string) (string, error)
	SearchMemory(sessionID, query string, topK int) ([]store.MemoryHit, error)
}

// ExecutionRecord pairs one executed action with its result, in step
// order.
type ExecutionRecord struct {
	Step   int          `json:"step"`
	Action Action       `json:"action"`
	Result tools.Result `json:"result"`
}

// Research is what the memory collaborator contributed to this run.
type Research struct {
	Objective  string   `json:"objective"`
	MemoryHits int      `json:"memory_hits"`
	Facts      []string `json:"facts"`
}

// Validation summarizes the execution outcome. OK is true iff nothing
// failed; dry runs are trivially OK with zero counts.
type Validation struct {
	OK           bool     `json:"ok"`
	Summary      string   `json:"summary"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors,omitempty"`
}

// MemoryReceipt reports the stored reflection.
type MemoryReceipt struct {
	OK       bool   `json:"ok"`
	MemoryID string `json:"memory_id,omitempty"`
}

func runResearch(memory MemoryLookup, sessionID, objective string, topK int) Research {
	out := Research{Objective: objective}
	if memory == nil {
		return out
	}
	hits, err := memory.SearchMemory(sessionID, objective, topK)
	if err != nil {
		return out
	}
	out.MemoryHits = len(hits)
	for _, hit := range hits {
		if hit.Text != "" {
			out.Facts = append(out.Facts, hit.Text)
		}
	}
	return out
}

func validate(records []ExecutionRecord, autoExecute bool) Validation {
	if !autoExecute {
		return Validation{
			OK:      true,
			Summary: "Dry-run mode. No tool actions executed.",
		}
	}

	success := 0
	failure := 0
	var errs []string
	for _, record := range records {
		if record.Result.Succeeded() {
			success++
			continue
		}
		failure++
		msg := record.Result.Message()
		if msg == "" {
			msg = "Unknown failure"
		}
		errs = append(errs, msg)
	}

	return Validation{
		OK:           failure == 0,
		Summary:      fmt.Sprintf("Executed %d actions: %d succeeded, %d failed.", success+failure, success, failure),
		SuccessCount: success,
		FailureCount: failure,
		Errors:       errs,
	}
}

func storeReflection(memory MemoryLookup, sessionID, objective string, validation Validation) MemoryReceipt {
	if memory == nil {
		return MemoryReceipt{}
	}
	status := "needs_review"
	if validation.OK {
		status = "ok"
	}
	text := fmt.Sprintf("Objective: %s | status: %s | summary: %s", objective, status, validation.Summary)
	id, err := memory.AddMemory(sessionID, text, map[string]string{"kind": "agent_reflection"})
	if err != nil {
		return MemoryReceipt{}
	}
	return MemoryReceipt{OK: true, MemoryID: id}
}

func summarize(objective string, plan brain.ExecutionPlan, risk brain.RiskAssessment, validation Validation, confirmationRequired bool) string {
	if confirmationRequired {
		return fmt.Sprintf("Objective '%s' is high risk. Execution paused until confirmation token is provided.", objective)
	}
	return fmt.Sprintf("Objective analyzed. Plan has %d steps. Risk level: %s. %s",
		len(plan.Steps), risk.Level, validation.Summary)
}
