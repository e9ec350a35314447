// Package selector checks generated step definitions against the selectors
// that actually exist in the UI source.
package selector

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
)

// Status is the outcome of a validation run.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// CallShape is the only form in which generated code may reference a selector.
// Prompts instruct the backend to use it, and Extract only recognises it.
const CallShape = `By.cssSelector("<selector>")`

// cssSelectorCall matches By.cssSelector("...") with a Java string literal
// argument, allowing escaped quotes inside the literal.
var cssSelectorCall = regexp.MustCompile(`By\.cssSelector\(\s*"((?:[^"\\\n]|\\.)*)"\s*\)`)

// Report is the result of validating generated text. All sets are sorted
// and de-duplicated so identical inputs marshal to identical bytes.
type Report struct {
	AllowedSelectors []string `json:"allowedSelectors"`
	UsedSelectors    []string `json:"usedSelectors"`
	InvalidSelectors []string `json:"invalidSelectors"`
	Status           Status   `json:"status"`
}

// Passed reports whether every used selector is allowed.
func (r Report) Passed() bool {
	return r.Status == StatusPass
}

// Extract returns the distinct selector arguments of every canonical call in
// text, in sorted order. Selector-like strings outside the call shape are ignored.
func Extract(text string) []string {
	matches := cssSelectorCall.FindAllStringSubmatch(text, -1)
	used := make([]string, 0, len(matches))
	for _, m := range matches {
		used = append(used, unescape(m[1]))
	}
	return sortedSet(used)
}

// Validate checks the selectors used in text against the UI context.
func Validate(text string, ui *contextclient.UIContext) Report {
	return ValidateAgainst(text, ui.Selectors())
}

// ValidateAgainst checks the selectors used in text against an allow-list.
func ValidateAgainst(text string, allowed []string) Report {
	allowedSet := sortedSet(allowed)
	lookup := make(map[string]struct{}, len(allowedSet))
	for _, s := range allowedSet {
		lookup[s] = struct{}{}
	}

	used := Extract(text)
	invalid := make([]string, 0)
	for _, s := range used {
		if _, ok := lookup[s]; !ok {
			invalid = append(invalid, s)
		}
	}

	status := StatusPass
	if len(invalid) > 0 {
		status = StatusFail
	}

	return Report{
		AllowedSelectors: allowedSet,
		UsedSelectors:    used,
		InvalidSelectors: invalid,
		Status:           status,
	}
}

// unescape decodes a Java string literal body. Java and Go share the escapes
// that matter here except \', which Java allows inside double quotes; anything
// Go cannot decode is kept verbatim.
func unescape(raw string) string {
	s, err := strconv.Unquote(`"` + strings.ReplaceAll(raw, `\'`, `'`) + `"`)
	if err != nil {
		return raw
	}
	return s
}

func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
