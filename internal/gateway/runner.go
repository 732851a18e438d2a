package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// CommandResult is the captured outcome of a finished process.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs an external program to completion.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// Run starts the process, drains stdout and stderr concurrently and waits for
// it to exit. A non-zero exit is reported in ExitCode, not as an error; the
// error covers processes that could not be started or were cancelled.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to open stdout of %s: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to open stderr of %s: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return CommandResult{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		return CommandResult{}, fmt.Errorf("failed to start %s: %w", name, err)
	}

	// Both pipes must be fully read before Wait closes them.
	var outBuf, errBuf bytes.Buffer
	var eg errgroup.Group
	eg.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	eg.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})
	readErr := eg.Wait()
	waitErr := cmd.Wait()

	result := CommandResult{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s interrupted: %w", name, ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return result, fmt.Errorf("failed to wait for %s: %w", name, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	if readErr != nil {
		return result, fmt.Errorf("failed to read output of %s: %w", name, readErr)
	}
	return result, nil
}
