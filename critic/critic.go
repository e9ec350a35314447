// Package critic decides whether generated step definitions deserve one
// corrective regeneration.
package critic

import (
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
)

// ViolationMarker is emitted by the generation backend when it refuses to
// follow one of the prompt rules.
const ViolationMarker = "RULE VIOLATION"

const (
	IssueRuleViolation   = "Prompt rule violation"
	IssueInvalidSelector = "Invalid selectors used"
)

// Verdict is the critic's classification of one generation.
type Verdict struct {
	Issues   []string `json:"issues"`
	CanRetry bool     `json:"canRetry"`
}

// Review applies the fixed rule set. It keeps no state between calls.
func Review(text string, report selector.Report) Verdict {
	issues := make([]string, 0, 2)

	if strings.Contains(text, ViolationMarker) {
		issues = append(issues, IssueRuleViolation)
	}
	if report.Status == selector.StatusFail {
		issues = append(issues, IssueInvalidSelector)
	}

	return Verdict{
		Issues:   issues,
		CanRetry: len(issues) > 0,
	}
}
