package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// CommandRunner executes steps as real OS processes.
type CommandRunner struct{}

// NewCommandRunner creates a runner backed by os/exec.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Run executes a step and captures its outcome. A non-zero exit code is
// reported through Result, not as an error; an error is returned only
// when the process could not be started at all.
func (r *CommandRunner) Run(step Step) (*Result, error) {
	startTime := time.Now()

	var cmd *exec.Cmd
	ctx := context.Background()
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	switch {
	case step.Shell != "":
		shell, flag := platformShell()
		cmd = exec.CommandContext(ctx, shell, flag, step.Shell)
	case len(step.Argv) > 0:
		cmd = exec.CommandContext(ctx, step.Argv[0], step.Argv[1:]...)
	default:
		return nil, fmt.Errorf("step %q has no command", step.Name)
	}

	cmd.Dir = step.Dir
	if step.Env != nil {
		cmd.Env = step.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			// Command failed to start
			return nil, fmt.Errorf("failed to execute %s: %w", step.Name, err)
		}
	}

	return &Result{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(startTime),
		Err:      err,
	}, nil
}

func platformShell() (string, string) {
	if runtime.GOOS == "windows" {
		return "cmd", "/c"
	}
	return "sh", "-c"
}

// Probe runs a tool's version flag through the shell and returns the
// trimmed first line of output. The shell lookup matters: tools added
// to the search path mid-run are found without restarting the process.
func Probe(r Runner, env []string, tool string) (string, error) {
	result, err := r.Run(Step{
		Name:  tool + " probe",
		Shell: tool + " --version",
		Env:   env,
	})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%s --version exited with code %d: %s", tool, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	out := strings.TrimSpace(result.Stdout)
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = strings.TrimSpace(out[:i])
	}
	return out, nil
}
