package brain

import (
	"regexp"
	"strings"
)

// PlanStep is a single sub-task in a broader plan. Ids are 1-based and
// stable within a plan.
type PlanStep struct {
	ID        int    `json:"id"`
	Task      string `json:"task"`
	Rationale string `json:"rationale"`
}

// ExecutionPlan is an ordered decomposition of one objective.
type ExecutionPlan struct {
	Objective string     `json:"objective"`
	Steps     []PlanStep `json:"steps"`
}

var conjunctionRe = regexp.MustCompile(`(?i)\b(?:then|and then|after that|next|finally|and)\b`)

const maxPlanSteps = 8

// Planner decomposes free-text objectives into ordered steps. It is a
// deterministic splitter, not a reasoning engine: identical input always
// yields an identical plan.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

func (p *Planner) BuildPlan(userMessage string) ExecutionPlan {
	objective := strings.TrimSpace(userMessage)
	if objective == "" {
		objective = "Handle request"
	}

	parts := splitSteps(objective)
	var steps []PlanStep

	for idx, part := range parts {
		task := strings.Trim(strings.TrimSpace(part), ".")
		if task == "" {
			continue
		}
		rationale := "Required to progress toward the objective."
		if idx == 0 {
			rationale = "Establish initial execution direction."
		} else if idx == len(parts)-1 {
			rationale = "Finalize and validate outcome."
		}
		steps = append(steps, PlanStep{ID: idx + 1, Task: task, Rationale: rationale})
	}

	if len(steps) == 0 {
		steps = []PlanStep{{ID: 1, Task: "Clarify intent", Rationale: "No clear task segments detected."}}
	}

	return ExecutionPlan{Objective: objective, Steps: steps}
}

// splitSteps cuts the text on sequencing conjunctions, falling back to
// commas when the conjunctions yield a single chunk.
func splitSteps(text string) []string {
	chunks := conjunctionRe.Split(text, -1)
	var cleaned []string
	for _, chunk := range chunks {
		trimmed := strings.Trim(chunk, " ,")
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) <= 1 && strings.Contains(text, ",") {
		cleaned = cleaned[:0]
		for _, chunk := range strings.Split(text, ",") {
			trimmed := strings.TrimSpace(chunk)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
	}

	if len(cleaned) > maxPlanSteps {
		cleaned = cleaned[:maxPlanSteps]
	}
	return cleaned
}
