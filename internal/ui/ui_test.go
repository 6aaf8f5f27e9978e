package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestHeaderRender(t *testing.T) {
	h := NewHeader("Window", "budgetgrid window --rows 10000", []Param{
		{Key: "Rows", Value: "10000"},
		{Key: "Viewport", Value: "600"},
	}).SetWidth(80)

	out := h.Render()
	for _, want := range []string{"WINDOW", "budgetgrid window --rows 10000", "Rows:", "10000", "Viewport:", "600"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Rows:") > strings.Index(out, "Viewport:") {
		t.Error("params should render in declaration order")
	}
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Layout saved", []Param{{Key: "Path", Value: "/tmp/layout.yaml"}}),
			want:   []string{"SUCCESS", "Layout saved", "Path:", "/tmp/layout.yaml"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Load failed", errors.New("no such file"), []string{"Check the path"}),
			want:   []string{"FAILED", "Load failed", "no such file", "Troubleshooting:", "Check the path"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No servers found", nil).AddDetail("Service", "_budgetgrid._tcp"),
			want:   []string{"WARNING", "No servers found", "_budgetgrid._tcp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(90).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Render() missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestProgressUpdateStep(t *testing.T) {
	p := NewProgress([]string{"Load layout", "Load dataset", "Replay edits", "Open sink"})

	p.UpdateStep(1, StepRunning, "")
	if p.Current != 1 || p.Percent != 0 {
		t.Errorf("after start: current=%d percent=%v", p.Current, p.Percent)
	}
	p.UpdateStep(1, StepComplete, "")
	p.UpdateStep(2, StepComplete, "12 rows")
	p.UpdateStep(3, StepSkipped, "no sink")
	if p.Percent != 0.75 {
		t.Errorf("Percent = %v, want 0.75", p.Percent)
	}
	p.UpdateStep(9, StepComplete, "")
	p.UpdateStep(0, StepComplete, "")

	out := p.Render()
	if !strings.Contains(out, "[2/4] Load dataset") || !strings.Contains(out, "(12 rows)") {
		t.Errorf("Render() =\n%s", out)
	}
}

func TestRunner(t *testing.T) {
	tests := []struct {
		name    string
		op      Operation
		quiet   bool
		wantErr bool
		want    []string
		absent  []string
	}{
		{
			name: "success",
			op: func(ctx context.Context, onStep StepCallback) ([]Param, error) {
				onStep(1, StepRunning, "")
				onStep(1, StepComplete, "3 rows")
				onStep(2, StepSkipped, "")
				return []Param{{Key: "Rows", Value: "3"}}, nil
			},
			want: []string{"OPEN DATASET", "(3 rows)", "SUCCESS", "Rows:", "Duration:"},
		},
		{
			name: "failure",
			op: func(ctx context.Context, onStep StepCallback) ([]Param, error) {
				onStep(1, StepFailed, "")
				return nil, errors.New("file not found")
			},
			wantErr: true,
			want:    []string{"FAILED", "file not found", "Check the dataset path"},
		},
		{
			name:  "quiet success",
			quiet: true,
			op: func(ctx context.Context, onStep StepCallback) ([]Param, error) {
				onStep(1, StepComplete, "")
				return nil, nil
			},
			want:   []string{"Load dataset"},
			absent: []string{"SUCCESS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewRunner(RunnerConfig{
				Title:           "Open dataset",
				Command:         "budgetgrid edit budget.json",
				StepNames:       []string{"Load dataset", "Open sink"},
				Troubleshooting: []string{"Check the dataset path"},
				Quiet:           tt.quiet,
				Output:          &buf,
			}).SetWidth(90)

			err := r.Run(context.Background(), tt.op)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a) {
					t.Errorf("output should not contain %q:\n%s", a, out)
				}
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"  yes  \n", true},
		{"yes", true},
		{"no\n", false},
		{"YES\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := ConfirmOverwrite(strings.NewReader(tt.input), &out, "/tmp/layout.yaml")
		if got != tt.want {
			t.Errorf("ConfirmOverwrite(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "/tmp/layout.yaml already exists") {
			t.Errorf("prompt did not name the file:\n%s", out.String())
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Instance", "URL"},
		[][]string{
			{"office", "ws://192.168.1.2:8470/ws"},
			{"kitchen-pc", "ws://192.168.1.30:8470/ws"},
		},
	)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("RenderTable() has %d lines, want 3:\n%s", len(lines), out)
	}
	// Second column starts at the same offset in every data row
	if strings.Index(lines[1], "ws://") != strings.Index(lines[2], "ws://") {
		t.Errorf("columns are not aligned:\n%s", out)
	}
}

func TestRenderRangeBar(t *testing.T) {
	out := RenderRangeBar(4995, 5021, 10000, 80)
	if !strings.Contains(out, "rows 4995-5021 of 10000") {
		t.Errorf("RenderRangeBar() = %q", out)
	}
	if out := RenderRangeBar(0, -1, 0, 80); !strings.Contains(out, "of 0") {
		t.Errorf("empty range = %q", out)
	}
}
