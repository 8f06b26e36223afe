package exec

import "time"

// Step represents a single external process invocation.
// Exactly one of Argv or Shell is set: Argv runs the program directly,
// Shell runs the line through the platform shell so tools freshly added
// to the search path are found.
type Step struct {
	Name    string        // human-readable step name for logs and errors
	Argv    []string      // program and arguments
	Shell   string        // shell command line
	Dir     string        // working directory, empty for inherited
	Env     []string      // full process environment, nil for inherited
	Timeout time.Duration // zero means no enforced deadline
}

// Result represents the outcome of an execution step
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// CombinedOutput returns stdout and stderr concatenated, for diagnostics
// on failed steps.
func (r *Result) CombinedOutput() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner executes external process steps. The pipeline depends on this
// interface so tests can script tool behavior without spawning anything.
type Runner interface {
	Run(step Step) (*Result, error)
}
