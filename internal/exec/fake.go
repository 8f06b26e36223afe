package exec

import (
	"fmt"
	"strings"
)

// FakeResponse is a scripted outcome for a FakeRunner rule.
type FakeResponse struct {
	ExitCode int
	Stdout   string
	Stderr   string
	StartErr error // simulates the program not starting at all
}

type fakeRule struct {
	match string
	resps []FakeResponse
}

// FakeRunner is a scriptable Runner for tests. Rules are matched against
// the step's shell line or joined argv, first match wins; unmatched
// steps succeed with empty output.
type FakeRunner struct {
	rules []fakeRule

	// Calls records every executed step in order.
	Calls []Step
}

// NewFakeRunner creates an empty fake runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers a response for steps whose command line contains match.
// Multiple responses are consumed in order, the last one sticking.
func (f *FakeRunner) On(match string, resps ...FakeResponse) *FakeRunner {
	f.rules = append(f.rules, fakeRule{match: match, resps: resps})
	return f
}

// Run implements Runner.
func (f *FakeRunner) Run(step Step) (*Result, error) {
	f.Calls = append(f.Calls, step)

	line := step.Shell
	if line == "" {
		line = strings.Join(step.Argv, " ")
	}

	for i := range f.rules {
		rule := &f.rules[i]
		if !strings.Contains(line, rule.match) || len(rule.resps) == 0 {
			continue
		}
		resp := rule.resps[0]
		if len(rule.resps) > 1 {
			rule.resps = rule.resps[1:]
		}
		if resp.StartErr != nil {
			return nil, fmt.Errorf("failed to execute %s: %w", step.Name, resp.StartErr)
		}
		return &Result{
			ExitCode: resp.ExitCode,
			Stdout:   resp.Stdout,
			Stderr:   resp.Stderr,
		}, nil
	}

	return &Result{ExitCode: 0}, nil
}

// CommandLines returns the recorded command lines, shell or argv form.
func (f *FakeRunner) CommandLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, step := range f.Calls {
		if step.Shell != "" {
			lines = append(lines, step.Shell)
		} else {
			lines = append(lines, strings.Join(step.Argv, " "))
		}
	}
	return lines
}
