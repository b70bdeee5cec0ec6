package brain

import (
	"fmt"
	"strings"
)

// RiskLevel classifies how dangerous a request is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment is the derived risk verdict for one request. It is never
// persisted; confirmation gating keys off ConfirmationRequired.
type RiskAssessment struct {
	Level                RiskLevel `json:"level"`
	Score                int       `json:"score"`
	Reasons              []string  `json:"reasons"`
	ConfirmationRequired bool      `json:"confirmation_required"`
}

// Term sets are ordered alphabetically so reasons come out in a stable
// order. Each high-risk hit adds 3 and forces the high level; each
// medium-risk hit adds 1.
var highRiskTerms = []string{
	"api key",
	"bank",
	"credentials",
	"delete",
	"drop table",
	"erase",
	"format disk",
	"password",
	"payment",
	"reboot",
	"rm -rf",
	"shutdown",
	"transfer",
}

var mediumRiskTerms = []string{
	"automation",
	"create key",
	"email",
	"execute",
	"install",
	"open site",
	"run command",
	"schedule",
	"send mail",
	"signup",
	"sudo",
}

const confirmationReason = "Explicit user confirmation required"

// RiskEvaluator scores a request against the fixed term sets. Matching is
// case-insensitive substring containment over the full request text.
type RiskEvaluator struct{}

func NewRiskEvaluator() *RiskEvaluator {
	return &RiskEvaluator{}
}

func (e *RiskEvaluator) Evaluate(userMessage string, plan ExecutionPlan) RiskAssessment {
	lower := strings.ToLower(userMessage)
	score := 0
	var reasons []string
	highHit := false

	for _, token := range highRiskTerms {
		if strings.Contains(lower, token) {
			score += 3
			reasons = append(reasons, fmt.Sprintf("High-risk indicator: '%s'", token))
			highHit = true
		}
	}

	for _, token := range mediumRiskTerms {
		if strings.Contains(lower, token) {
			score++
			reasons = append(reasons, fmt.Sprintf("Medium-risk indicator: '%s'", token))
		}
	}

	if len(plan.Steps) >= 4 {
		score++
		reasons = append(reasons, "Multi-step request complexity")
	}

	var level RiskLevel
	switch {
	case highHit || score >= 4:
		level = RiskHigh
	case score >= 2:
		level = RiskMedium
	default:
		level = RiskLow
	}

	confirmationRequired := level == RiskHigh
	if confirmationRequired {
		reasons = append(reasons, confirmationReason)
	}

	return RiskAssessment{
		Level:                level,
		Score:                score,
		Reasons:              reasons,
		ConfirmationRequired: confirmationRequired,
	}
}
