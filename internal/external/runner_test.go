package external

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"github.com/crolly/mug/internal/project"
)

// fakeRunner records commands and fails the one named in failOn.
type fakeRunner struct {
	calls  [][]string
	failOn string
}

func (f *fakeRunner) Run(_ context.Context, _ string, command []string) error {
	f.calls = append(f.calls, command)
	if strings.Join(command, " ") == f.failOn {
		return &ToolError{Command: command, ExitCode: 2, Err: errors.New("exit status 2")}
	}
	return nil
}

func TestDeploySteps(t *testing.T) {
	tests := []struct {
		name  string
		stage string
		want  [][]string
	}{
		{"with_stage", "prod", [][]string{{"make", "build"}, {"serverless", "deploy", "--stage", "prod"}}},
		{"without_stage", " ", [][]string{{"make", "build"}, {"serverless", "deploy"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := DeploySteps(DefaultTools(), tt.stage)
			if len(steps) != len(tt.want) {
				t.Fatalf("steps = %v", steps)
			}
			for i := range steps {
				if !slices.Equal(steps[i].Command, tt.want[i]) {
					t.Errorf("step %d = %v, want %v", i, steps[i].Command, tt.want[i])
				}
			}
		})
	}
}

func TestDebugSteps(t *testing.T) {
	steps := DebugSteps(DefaultTools())
	if len(steps) != 2 || steps[1].Command[0] != "sam" {
		t.Errorf("steps = %v", steps)
	}

	noDebug := DefaultTools()
	noDebug.Debug = nil
	if steps := DebugSteps(noDebug); len(steps) != 1 {
		t.Errorf("steps without debug command = %v", steps)
	}
}

func TestRunStepsStopsAtFirstFailure(t *testing.T) {
	r := &fakeRunner{failOn: "make build"}
	var seen []string

	err := RunSteps(context.Background(), r, "/tmp", DeploySteps(DefaultTools(), "dev"), func(s Step) {
		seen = append(seen, s.Name)
	})
	if !errors.Is(err, project.ErrExternalTool) {
		t.Fatalf("error = %v, want ErrExternalTool", err)
	}
	if len(r.calls) != 1 || !slices.Equal(seen, []string{"build"}) {
		t.Errorf("calls = %v, seen = %v", r.calls, seen)
	}
}

func TestRunStepsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRunner{}

	if err := RunSteps(ctx, r, "", DeploySteps(DefaultTools(), ""), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("calls = %v", r.calls)
	}
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var stdout, stderr bytes.Buffer
	r := NewExecRunner(&stdout, &stderr, nil)
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		stdout.Reset()
		if err := r.Run(context.Background(), dir, []string{"sh", "-c", "echo built"}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if strings.TrimSpace(stdout.String()) != "built" {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("exit_code", func(t *testing.T) {
		err := r.Run(context.Background(), dir, []string{"sh", "-c", "echo first >&2; echo no credentials >&2; exit 3"})
		var te *ToolError
		if !errors.As(err, &te) {
			t.Fatalf("error = %v, want *ToolError", err)
		}
		if te.ExitCode != 3 || te.Stderr != "no credentials" {
			t.Errorf("ToolError = %+v", te)
		}
		if !errors.Is(err, project.ErrExternalTool) {
			t.Error("ToolError must match ErrExternalTool")
		}
	})

	t.Run("missing_tool", func(t *testing.T) {
		err := r.Run(context.Background(), dir, []string{"mug-no-such-tool"})
		if !errors.Is(err, project.ErrExternalTool) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("empty_command", func(t *testing.T) {
		err := r.Run(context.Background(), dir, nil)
		if !errors.Is(err, project.ErrValidation) {
			t.Errorf("error = %v", err)
		}
	})
}
