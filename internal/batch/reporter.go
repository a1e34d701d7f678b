// internal/batch/reporter.go
// Package: batch
package batch

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
)

// PlainReporter prints one line per saved transcript.
type PlainReporter struct {
	w io.Writer
}

// NewPlainReporter returns a reporter writing to w.
func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{w: w}
}

// Saved prints the completion notice for rec.
func (r *PlainReporter) Saved(rec Record) {
	fmt.Fprintln(r.w, Notice(rec))
}

// Notice is the completion line for rec.
func Notice(rec Record) string {
	line := "Generated and saved: " + rec.Path
	if rec.Result.OK() {
		return okStyle.Render("✓") + " " + line + faintStyle.Render(fmt.Sprintf(" (%.1fs)", rec.Result.Duration.Seconds()))
	}
	return failStyle.Render("✗") + " " + line + failStyle.Render(" (generation failed, sentinel written)")
}

// RenderSummary formats sum for the terminal.
func RenderSummary(sum *Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("chatgen run "+sum.RunID) + "\n")
	fmt.Fprintf(&b, "  Output:     %s\n", sum.OutputDir)
	fmt.Fprintf(&b, "  Seed:       %d\n", sum.Seed)
	fmt.Fprintf(&b, "  Written:    %d/%d (follow %d, violate %d)\n", sum.Written, sum.Count, sum.Follow, sum.Violate)
	if sum.Failed > 0 {
		kinds := make([]string, 0, len(sum.FailuresByKind))
		for k, n := range sum.FailuresByKind {
			kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
		}
		sort.Strings(kinds)
		b.WriteString(failStyle.Render(fmt.Sprintf("  Failed:     %d [%s]", sum.Failed, strings.Join(kinds, " "))) + "\n")
	} else {
		b.WriteString(okStyle.Render("  Failed:     0") + "\n")
	}
	fmt.Fprintf(&b, "  Latency:    p50 %.0f ms / p95 %.0f ms (mean %.0f ± %.0f ms)\n",
		sum.LatencyP50Millis, sum.LatencyP95Millis, sum.LatencyMeanMillis, sum.LatencyStdMillis)
	return b.String()
}
