// Package process runs the installed binary with the terminal attached.
package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/agentx-labs/codex-installer/internal/installerr"
)

// Invoker starts a program in the foreground and waits for it.
type Invoker struct {
	// Stdin, Stdout and Stderr default to the installer's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes path with args and returns its exit code. An error is
// returned only when the program could not be started; a non-zero exit is
// reported through the code alone.
func (i *Invoker) Run(ctx context.Context, path string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = i.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = i.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = i.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, installerr.Wrap(installerr.LoginProcessMissing, err, "could not start %s", path)
}
