package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped
)

// Step is one line of a multi-step operation
type Step struct {
	Number  int
	Name    string
	Status  StepStatus
	Message string // e.g., "1,204 rows"
}

// Progress tracks a numbered list of steps
type Progress struct {
	Steps   []Step
	Current int
	Total   int
	Percent float64
	Width   int
}

// NewProgress creates a tracker with named steps
func NewProgress(names []string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Number: i + 1, Name: name, Status: StepPending}
	}
	return &Progress{
		Steps: steps,
		Total: len(names),
		Width: GetTerminalWidth(),
	}
}

// UpdateStep updates a step's status and optional message
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	idx := stepNumber - 1
	p.Steps[idx].Status = status
	p.Steps[idx].Message = message

	switch status {
	case StepRunning:
		p.Current = stepNumber
	case StepComplete, StepFailed, StepSkipped:
		completed := 0
		for _, s := range p.Steps {
			if s.Status == StepComplete || s.Status == StepSkipped {
				completed++
			}
		}
		p.Percent = float64(completed) / float64(p.Total)
	}
}

// Render returns the step list
func (p *Progress) Render() string {
	lines := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		lines[i] = p.renderStepLine(s)
	}
	return strings.Join(lines, "\n")
}

// renderStepLine renders "[n/total] name   marker  (message)"
func (p *Progress) renderStepLine(step Step) string {
	var marker string
	var style lipgloss.Style
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, p.Total)
	b.WriteString(style.Render(step.Name))
	b.WriteString(strings.Repeat(" ", max(1, 36-lipgloss.Width(step.Name))))
	b.WriteString(style.Render(marker))
	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback reports progress of a step
type StepCallback func(stepNumber int, status StepStatus, message string)

// RenderRangeBar draws where a row range sits within total rows, e.g. the
// rendered window of a virtualized table
func RenderRangeBar(start, end, total, width int) string {
	barWidth := min(max(width-30, 20), 50)
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage())

	var percent float64
	if total > 0 && end >= start {
		percent = float64(end+1) / float64(total)
	}
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  rows %d-%d of %d", bar.ViewAs(percent), start, end, total))
}
