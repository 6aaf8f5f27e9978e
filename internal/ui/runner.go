package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command
type RunnerConfig struct {
	Title           string    // e.g., "Open dataset"
	Command         string    // e.g., "budgetgrid edit budget.json"
	Params          []Param   // Shown in the header
	StepNames       []string  // One per step
	Troubleshooting []string  // Shown when the operation fails
	Quiet           bool      // Skip the success box
	Output          io.Writer // Defaults to os.Stderr
}

// Runner renders header, step progress and result around an operation
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// Operation does the work, reporting through onStep, and returns details
// for the success box
type Operation func(ctx context.Context, onStep StepCallback) ([]Param, error)

// NewRunner creates a runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	width := GetTerminalWidth()
	progress := NewProgress(config.StepNames)
	progress.Width = width
	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// SetWidth overrides the detected terminal width
func (r *Runner) SetWidth(width int) *Runner {
	r.width = width
	r.header.SetWidth(width)
	r.progress.Width = width
	return r
}

// Run executes the operation and prints its outcome
func (r *Runner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := op(ctx, r.onStep)
	duration := time.Since(start)
	_, _ = fmt.Fprintln(r.output)

	if err != nil {
		result := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}
	if r.config.Quiet {
		return nil
	}
	details = append(details, Param{Key: "Duration", Value: duration.Round(time.Millisecond).String()})
	result := NewSuccessResult(r.config.Title+" complete", details).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	r.progress.UpdateStep(stepNumber, status, message)
	line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
	switch status {
	case StepRunning:
		// Overwritten when the step finishes
		_, _ = fmt.Fprint(r.output, line+"\r")
	case StepComplete, StepFailed, StepSkipped:
		_, _ = fmt.Fprintln(r.output, line)
	}
}
