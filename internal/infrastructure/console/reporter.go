// Package console prints a run's steps for a human watching the terminal.
package console

import (
	"io"
	"unicode/utf8"

	"github.com/fatih/color"
)

type Reporter struct {
	out    io.Writer
	steps  int
	failed int
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) ShowBanner(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(r.out, "\n━━━ %s ━━━\n", title)
}

func (r *Reporter) ShowStepStart(step, detail string) {
	r.steps++
	icon, name := stepDisplay(step)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(r.out, "\n%s %s\n", icon, name)

	if detail != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(r.out, "   %s\n", truncate(detail, 80))
	}
}

func (r *Reporter) ShowStepResult(result string, err error) {
	if err != nil {
		r.failed++
		red := color.New(color.FgRed)
		red.Fprint(r.out, "✗ failed: ")

		dim := color.New(color.Faint)
		dim.Fprintln(r.out, truncate(err.Error(), 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(r.out, "✓ %s\n", truncate(result, 200))
}

// ShowSummary prints the totals and returns the number of failed steps.
func (r *Reporter) ShowSummary() int {
	c := color.New(color.FgGreen, color.Bold)
	if r.failed > 0 {
		c = color.New(color.FgRed, color.Bold)
	}
	c.Fprintf(r.out, "\n%d steps, %d failed\n", r.steps, r.failed)
	return r.failed
}

func stepDisplay(step string) (string, string) {
	displays := map[string][2]string{
		"dashboard": {"🖥", "Dashboard"},
		"setup":     {"🔑", "Login and open tools"},
		"create":    {"➕", "Create tool"},
		"find":      {"🔍", "Find tool"},
		"execute":   {"▶", "Execute tool"},
		"delete":    {"🗑", "Delete tool"},
	}

	if display, ok := displays[step]; ok {
		return display[0], display[1]
	}
	return "•", step
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
