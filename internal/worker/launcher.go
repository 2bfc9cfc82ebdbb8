package worker

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// Launcher runs an evaluator command to completion. Implementations
// return the command's error, so a non-zero exit surfaces as
// *exec.ExitError.
type Launcher interface {
	Launch(ctx context.Context, cmd Command) error
}

// ExecLauncher launches evaluator processes via os/exec.
type ExecLauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Launch executes the command with the worker's environment appended to
// the parent environment.
func (l ExecLauncher) Launch(ctx context.Context, cmd Command) error {
	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Env = append(os.Environ(), cmd.Env...)
	proc.Stdout = l.Stdout
	proc.Stderr = l.Stderr
	return proc.Run()
}
