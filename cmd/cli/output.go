package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/hairizuanbinnoorazman/ui-testgen/pipeline"
	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
)

var (
	passColor  = lipgloss.Color("#8BC34A")
	failColor  = lipgloss.Color("#e53935")
	mutedColor = lipgloss.Color("#6c7a89")

	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(passColor)
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(failColor)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

func printJSON(v interface{}) {
	fprintJSON(os.Stdout, v)
}

func fprintJSON(w io.Writer, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func printMessage(msg string) {
	fmt.Println(msg)
}

func statusBadge(passed bool, label string) string {
	if passed {
		return passStyle.Render(label)
	}
	return failStyle.Render(label)
}

// renderResult prints a human readable run summary.
func renderResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "%s %s\n", headingStyle.Render("Status:"), statusBadge(res.Succeeded(), string(res.Status)))
	if res.Story != "" {
		fmt.Fprintf(w, "%s %s\n", headingStyle.Render("Story:"), res.Story)
	}
	if res.Message != "" {
		fmt.Fprintln(w, failStyle.Render(res.Message))
	}

	if res.GeneratedArtifacts != nil {
		fmt.Fprintf(w, "\n%s\n%s\n", headingStyle.Render("Feature"), strings.TrimRight(res.GeneratedArtifacts.Feature, "\n"))
		fmt.Fprintf(w, "\n%s\n%s\n", headingStyle.Render("Step definitions"), strings.TrimRight(res.GeneratedArtifacts.Steps, "\n"))
	}

	if res.ValidationReport != nil {
		renderReport(w, res.ValidationReport, res.Retried)
	}
}

func renderReport(w io.Writer, report *selector.Report, retried bool) {
	fmt.Fprintf(w, "\n%s %s", headingStyle.Render("Selector validation:"), statusBadge(report.Passed(), string(report.Status)))
	if retried {
		fmt.Fprint(w, mutedStyle.Render(" (after one retry)"))
	}
	fmt.Fprintln(w)

	invalid := make(map[string]bool, len(report.InvalidSelectors))
	for _, sel := range report.InvalidSelectors {
		invalid[sel] = true
	}

	if len(report.UsedSelectors) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no selectors used"))
		return
	}

	rows := make([][]string, 0, len(report.UsedSelectors))
	for _, sel := range report.UsedSelectors {
		rows = append(rows, []string{sel, statusBadge(!invalid[sel], verdict(!invalid[sel]))})
	}
	printTable(w, []string{"SELECTOR", "RESULT"}, rows)
}

func verdict(ok bool) string {
	if ok {
		return string(selector.StatusPass)
	}
	return string(selector.StatusFail)
}
