package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Capture starts cmd and returns its stdout once it exits. stderr is
// returned alongside so callers can surface it in diagnostics.
func Capture(ctx context.Context, cmd *exec.Cmd) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return "", "", err
	}
	if err := Wait(ctx, cmd); err != nil {
		if ctx != nil && ctx.Err() != nil {
			// The process may still be writing; its buffers are not ours yet.
			return "", "", err
		}
		return stdout.String(), strings.TrimSpace(stderr.String()), err
	}
	return stdout.String(), strings.TrimSpace(stderr.String()), nil
}

// Wait blocks until cmd exits or ctx is done.
func Wait(ctx context.Context, cmd *exec.Cmd) error {
	if cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	if ctx == nil {
		return <-done
	}
	select {
	case err := <-done:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// exitCode returns the exit status carried by err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1
	}
	return exitErr.ExitCode()
}
