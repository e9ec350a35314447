package issuetracker

import (
	"regexp"
	"strings"
)

var (
	criteriaHeading = regexp.MustCompile(`(?i)^[#*_\s]*acceptance\s+criteria[*_\s]*:?[*_\s]*$`)
	listItem        = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(?:\[[ xX]\]\s+)?(.+)$`)
	anyHeading      = regexp.MustCompile(`^\s*(?:#{1,6}\s+\S|[*_]{2}[^*_]+[*_]{2}:?\s*$|[A-Z][A-Za-z ]{2,40}:\s*$)`)
)

// ExtractAcceptanceCriteria returns the list items that follow an
// "Acceptance Criteria" heading in a plain-text or markdown description.
// The section ends at the next heading. Returns an empty, non-nil slice
// when there is no such section.
func ExtractAcceptanceCriteria(text string) []string {
	criteria := []string{}
	inSection := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if criteriaHeading.MatchString(trimmed) {
			inSection = true
			continue
		}
		if !inSection || trimmed == "" {
			continue
		}
		if m := listItem.FindStringSubmatch(line); m != nil {
			criteria = append(criteria, strings.TrimSpace(m[1]))
			continue
		}
		if anyHeading.MatchString(line) {
			break
		}
	}
	return criteria
}
