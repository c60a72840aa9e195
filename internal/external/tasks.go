package external

import (
	"context"
	"strings"
)

// Tools names the commands used by Deploy and Debug.
type Tools struct {
	Make       string
	Serverless string
	Debug      []string
}

// DefaultTools returns the commands used when nothing is configured.
func DefaultTools() Tools {
	return Tools{
		Make:       "make",
		Serverless: "serverless",
		Debug:      []string{"sam", "local", "start-api"},
	}
}

// Step is one command of a task.
type Step struct {
	Name    string
	Command []string
}

// DeploySteps builds the handlers and deploys the descriptor to stage.
func DeploySteps(t Tools, stage string) []Step {
	steps := []Step{
		{Name: "build", Command: []string{t.Make, "build"}},
	}
	deploy := []string{t.Serverless, "deploy"}
	if stage = strings.TrimSpace(stage); stage != "" {
		deploy = append(deploy, "--stage", stage)
	}
	return append(steps, Step{Name: "deploy", Command: deploy})
}

// DebugSteps builds debug binaries and starts the local API.
func DebugSteps(t Tools) []Step {
	steps := []Step{
		{Name: "debug build", Command: []string{t.Make, "debug"}},
	}
	if len(t.Debug) > 0 {
		steps = append(steps, Step{Name: "local api", Command: t.Debug})
	}
	return steps
}

// RunSteps executes steps in order, stopping at the first failure.
// before is called ahead of each step, for progress display.
func RunSteps(ctx context.Context, r Runner, dir string, steps []Step, before func(Step)) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if before != nil {
			before(s)
		}
		if err := r.Run(ctx, dir, s.Command); err != nil {
			return err
		}
	}
	return nil
}
