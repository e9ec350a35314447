package scriptgen

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	multiSpace    = regexp.MustCompile(`[ \t]+`)
	manyNewlines  = regexp.MustCompile(`\n{3,}`)
	anyWhitespace = regexp.MustCompile(`\s+`)
)

// PromptLimits bounds how much story text is embedded in a prompt.
type PromptLimits struct {
	MaxSummaryLength     int
	MaxDescriptionLength int
	MaxCriteria          int
}

// DefaultPromptLimits returns the default prompt limits.
func DefaultPromptLimits() PromptLimits {
	return PromptLimits{
		MaxSummaryLength:     255,
		MaxDescriptionLength: 5000,
		MaxCriteria:          50,
	}
}

// SanitizeLine collapses a value onto a single line with control characters removed.
func SanitizeLine(s string) string {
	s = anyWhitespace.ReplaceAllString(s, " ")
	s = removeControlCharacters(s, false)
	return strings.TrimSpace(s)
}

// SanitizeText removes control and non-printable characters from multi-line
// text while keeping paragraph breaks.
func SanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = removeControlCharacters(s, true)
	s = removeNonPrintable(s)
	s = manyNewlines.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpace.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// truncate cuts s to at most max runes. A non-positive max disables the limit.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + " [truncated]"
}

// StripCodeFence removes a surrounding markdown code fence. Models often add
// one despite being told not to.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	// The block ends at the first closing fence; anything after it is
	// commentary from the model.
	if idx := strings.Index(s, "\n```"); idx != -1 {
		s = s[:idx]
	} else {
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// removeControlCharacters removes control characters from a string.
// If preserveFormatting is true, newlines and tabs are kept.
func removeControlCharacters(s string, preserveFormatting bool) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			if preserveFormatting && (r == '\n' || r == '\t') {
				result.WriteRune(r)
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

func removeNonPrintable(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
