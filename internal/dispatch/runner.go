package dispatch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

type Result struct {
	ExitCode int
	Duration time.Duration
}

// Runner executes expanded commands through a shell, sharing the parent's
// stdout and stderr.
type Runner struct {
	Shell  string
	Stdout io.Writer
	Stderr io.Writer
}

func NewRunner(shell string) *Runner {
	if shell == "" {
		shell = "sh"
	}

	return &Runner{
		Shell:  shell,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run blocks until the command exits. A non-zero exit status is reported in
// the result; only a failure to start the shell is returned as an error.
func (r *Runner) Run(command string) (Result, error) {
	cmd := exec.Command(r.Shell, "-c", command)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{Duration: time.Since(start)}

	if err == nil {
		return result, nil
	}

	if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, fmt.Errorf("failed to start command: %w", err)
}
