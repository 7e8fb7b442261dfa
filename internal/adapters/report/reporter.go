// Package report renders policy evaluation results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/ui/output"
	"go.trai.ch/guard/internal/ui/style"
)

// SeverityClass groups severities that share a color.
type SeverityClass int

const (
	// ClassLow covers info and low.
	ClassLow SeverityClass = iota
	// ClassMedium covers medium.
	ClassMedium
	// ClassHigh covers high and critical.
	ClassHigh
)

// ClassOf returns the color class of a severity.
func ClassOf(s domain.Severity) SeverityClass {
	switch {
	case s >= domain.SeverityHigh:
		return ClassHigh
	case s == domain.SeverityMedium:
		return ClassMedium
	default:
		return ClassLow
	}
}

// Color returns the brand color of the class.
func (c SeverityClass) Color() lipgloss.Color {
	switch c {
	case ClassHigh:
		return style.Red
	case ClassMedium:
		return style.Yellow
	default:
		return style.Blue
	}
}

// severityWidth aligns titles after the longest severity name.
const severityWidth = len("critical")

// Reporter implements ports.Reporter.
type Reporter struct {
	out *termenv.Output
}

// New creates a Reporter writing to w; nil selects stderr.
// CI logs are not terminals but still render ANSI colors, so CI=true forces them.
func New(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("CI") == "true" {
		return &Reporter{out: output.NewWithProfile(w, output.ColorProfileANSI)}
	}
	return &Reporter{out: output.New(w)}
}

// Report writes the rendered result.
func (r *Reporter) Report(result *domain.PolicyEvaluationResult) {
	if result == nil {
		return
	}
	_, _ = r.out.WriteString(r.Render(result))
}

// Render projects result into text without reordering dependencies or rejections.
func (r *Reporter) Render(result *domain.PolicyEvaluationResult) string {
	var b strings.Builder

	b.WriteString(r.headline(result.Verdict()))
	b.WriteString("\n")

	if result.IncompleteCount > 0 {
		b.WriteString(r.colored(incompleteNotice(result.IncompleteCount), style.Yellow))
		b.WriteString("\n")
	}

	for _, finding := range result.Dependencies {
		visible := finding.Visible()
		if len(visible) == 0 {
			continue
		}

		b.WriteString("\n")
		header := fmt.Sprintf("%s:%s@%s", finding.Registry, finding.Name, finding.Version)
		b.WriteString(r.out.String(header).Bold().String())
		b.WriteString("\n")

		for _, rejection := range visible {
			label := fmt.Sprintf("%-*s", severityWidth, rejection.Severity.String())
			b.WriteString("  ")
			b.WriteString(r.colored(label+" "+rejection.Title, ClassOf(rejection.Severity).Color()))
			if rejection.Domain != "" {
				b.WriteString(r.colored(" ["+rejection.Domain+"]", style.Slate))
			}
			b.WriteString("\n")
		}
	}

	if result.JobLink != "" {
		b.WriteString("\n")
		b.WriteString("Report: ")
		b.WriteString(r.colored(result.JobLink, style.Iris))
		b.WriteString("\n")
	}

	return b.String()
}

func (r *Reporter) headline(v domain.Verdict) string {
	var icon string
	var color lipgloss.Color
	switch v {
	case domain.VerdictFailure:
		icon, color = style.Cross, style.Red
	case domain.VerdictIncomplete:
		icon, color = style.Warning, style.Yellow
	default:
		icon, color = style.Check, style.Green
	}
	return output.Paint(r.out, icon+" "+v.String(), color).Bold().String()
}

func (r *Reporter) colored(s string, c lipgloss.Color) string {
	return output.Paint(r.out, s, c).String()
}

func incompleteNotice(n int) string {
	if n == 1 {
		return "1 package is still being analyzed"
	}
	return fmt.Sprintf("%d packages are still being analyzed", n)
}
