package scriptgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/critic"
)

const (
	// SkipSentinel is the only body a step definition may have when no
	// allowed selector fits the step.
	SkipSentinel = "// Step skipped — selector not available"

	correctionInstruction = "IMPORTANT: Fix selector issues and regenerate. Do NOT invent selectors."
)

// systemPrompt is sent as the system/instruction role by backends that support one.
const systemPrompt = "You are a senior QA automation engineer. " +
	"You generate Cucumber Gherkin scenarios and Selenium Java step definitions. " +
	"You strictly follow given context and avoid hallucination."

// PromptBuilder renders generation prompts. It is a pure function of its
// inputs: identical inputs produce byte-identical prompts.
type PromptBuilder struct {
	limits PromptLimits
}

// NewPromptBuilder creates a prompt builder with the given limits.
func NewPromptBuilder(limits PromptLimits) *PromptBuilder {
	return &PromptBuilder{limits: limits}
}

// BuildScenarioPrompt renders the prompt that asks for a Gherkin feature only.
func (b *PromptBuilder) BuildScenarioPrompt(story *contextclient.StoryContext, ui *contextclient.UIContext) string {
	var sb strings.Builder

	sb.WriteString("Generate ONLY a Gherkin feature file for the user story below.\n\n")
	sb.WriteString(b.renderStory(story))
	sb.WriteString("\n")
	sb.WriteString(renderSelectors(ui))
	sb.WriteString(`
<rules>
- Output ONLY Gherkin (Feature, Scenario, Given, When, Then, And)
- No step definitions
- No explanations and no markdown code fences
- Only visible UI actions
- Every UI step MUST be performable with a selector listed in <allowed_selectors>
- Do NOT invent selectors
- If no allowed selector exists for a needed UI action, OMIT that step
- If you cannot comply with these rules, output the line: ` + critic.ViolationMarker + `
</rules>
`)
	return sb.String()
}

// BuildStepDefinitionPrompt renders the prompt that asks for Selenium Java
// step definitions for an already generated scenario.
func (b *PromptBuilder) BuildStepDefinitionPrompt(scenario string, ui *contextclient.UIContext) string {
	var sb strings.Builder

	sb.WriteString("Generate Selenium Java step definitions (Cucumber) for the Gherkin feature below.\n\n")
	sb.WriteString("<feature>\n")
	sb.WriteString(strings.TrimSpace(scenario))
	sb.WriteString("\n</feature>\n\n")
	sb.WriteString(renderSelectors(ui))
	sb.WriteString(`
<rules>
- Output ONLY Java code
- Use Selenium WebDriver with Cucumber annotations (@Given, @When, @Then, @And)
- Locate elements ONLY with this exact form: driver.findElement(By.cssSelector("<selector>"))
- The <selector> argument MUST be copied verbatim from <allowed_selectors>, with double quotes escaped as \"
- Never use By.id, By.name, By.xpath, By.className, By.linkText or any other locator
- Do NOT invent selectors
- If no allowed selector exists for a step, keep the step method and make its body only this comment:
  ` + SkipSentinel + `
- If you cannot comply with these rules, output the line: ` + critic.ViolationMarker + `
</rules>
`)
	return sb.String()
}

// WithCorrection appends the corrective instruction used for the single retry.
// Invalid selectors, when given, are listed so the backend knows what to drop.
func WithCorrection(prompt string, invalid []string) string {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\n")
	sb.WriteString(correctionInstruction)
	if len(invalid) > 0 {
		sorted := append([]string(nil), invalid...)
		sort.Strings(sorted)
		sb.WriteString("\nThese selectors are NOT allowed and must not appear:\n")
		for _, s := range sorted {
			sb.WriteString("- ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (b *PromptBuilder) renderStory(story *contextclient.StoryContext) string {
	if story == nil {
		story = &contextclient.StoryContext{}
	}

	var sb strings.Builder
	sb.WriteString("<story>\n")
	fmt.Fprintf(&sb, "<id>%s</id>\n", SanitizeLine(story.StoryID))
	fmt.Fprintf(&sb, "<summary>%s</summary>\n", truncate(SanitizeLine(story.Summary), b.limits.MaxSummaryLength))
	if story.Status != "" {
		fmt.Fprintf(&sb, "<status>%s</status>\n", SanitizeLine(story.Status))
	}
	if story.Priority != "" {
		fmt.Fprintf(&sb, "<priority>%s</priority>\n", SanitizeLine(story.Priority))
	}
	if len(story.Labels) > 0 {
		fmt.Fprintf(&sb, "<labels>%s</labels>\n", strings.Join(sortedLines(story.Labels), ", "))
	}
	if len(story.Components) > 0 {
		fmt.Fprintf(&sb, "<components>%s</components>\n", strings.Join(sortedLines(story.Components), ", "))
	}
	fmt.Fprintf(&sb, "<description>\n%s\n</description>\n", truncate(SanitizeText(story.Description), b.limits.MaxDescriptionLength))

	if len(story.AcceptanceCriteria) > 0 {
		sb.WriteString("<acceptance_criteria>\n")
		for i, c := range story.AcceptanceCriteria {
			if b.limits.MaxCriteria > 0 && i >= b.limits.MaxCriteria {
				break
			}
			if line := SanitizeLine(c); line != "" {
				fmt.Fprintf(&sb, "- %s\n", line)
			}
		}
		sb.WriteString("</acceptance_criteria>\n")
	}
	sb.WriteString("</story>\n")
	return sb.String()
}

// renderSelectors embeds every selector value verbatim, plus the key map so
// the backend can tell which element each selector belongs to.
func renderSelectors(ui *contextclient.UIContext) string {
	var sb strings.Builder
	sb.WriteString("<allowed_selectors>\n")
	for _, sel := range ui.Selectors() {
		sb.WriteString(sel)
		sb.WriteString("\n")
	}
	sb.WriteString("</allowed_selectors>\n\n")

	sb.WriteString("<element_map>\n")
	sb.WriteString(elementMapJSON(ui))
	sb.WriteString("</element_map>\n")
	return sb.String()
}

func elementMapJSON(ui *contextclient.UIContext) string {
	elements := map[string]string{}
	if ui != nil && ui.Elements != nil {
		elements = ui.Elements
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(elements); err != nil {
		// map[string]string always encodes
		return "{}\n"
	}
	return buf.String()
}

func sortedLines(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if line := SanitizeLine(v); line != "" {
			out = append(out, line)
		}
	}
	sort.Strings(out)
	return out
}
