package critic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
	"github.com/stretchr/testify/assert"
)

func TestReview(t *testing.T) {
	t.Parallel()

	pass := selector.Report{Status: selector.StatusPass}
	fail := selector.Report{Status: selector.StatusFail, InvalidSelectors: []string{"#ghost"}}

	tests := []struct {
		name   string
		text   string
		report selector.Report
		want   Verdict
	}{
		{
			name:   "clean output",
			text:   `By.cssSelector("#ok")`,
			report: pass,
			want:   Verdict{Issues: []string{}, CanRetry: false},
		},
		{
			name:   "invalid selectors",
			text:   `By.cssSelector("#ghost")`,
			report: fail,
			want:   Verdict{Issues: []string{IssueInvalidSelector}, CanRetry: true},
		},
		{
			name:   "violation marker",
			text:   "RULE VIOLATION: cannot comply",
			report: pass,
			want:   Verdict{Issues: []string{IssueRuleViolation}, CanRetry: true},
		},
		{
			name:   "both rules fire in order",
			text:   "RULE VIOLATION",
			report: fail,
			want:   Verdict{Issues: []string{IssueRuleViolation, IssueInvalidSelector}, CanRetry: true},
		},
		{
			name:   "marker is case sensitive",
			text:   "rule violation",
			report: pass,
			want:   Verdict{Issues: []string{}, CanRetry: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Review(tt.text, tt.report)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Review() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReviewIsDeterministic(t *testing.T) {
	t.Parallel()

	report := selector.Report{Status: selector.StatusFail}
	first := Review("RULE VIOLATION", report)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Review("RULE VIOLATION", report))
	}
}
