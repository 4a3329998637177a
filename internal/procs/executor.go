// Package procs runs the external commands the pipeline depends on: the
// service manager, the status bar, and process lookup.
package procs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs a command and captures both output streams.
type Executor interface {
	Exec(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// LocalExecutor runs commands on this machine.
type LocalExecutor struct {
	// Env, when set, replaces the inherited environment.
	Env []string
}

// Exec runs name with args and waits for it to exit. A non-zero exit or a
// missing binary is returned as a *CommandError.
func (e LocalExecutor) Exec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if e.Env != nil {
		cmd.Env = e.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), nil
	}

	cmdErr := &CommandError{
		Command:  commandLine(name, args),
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
	}
	if exitErr := new(exec.ExitError); errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	if errors.Is(err, exec.ErrNotFound) {
		cmdErr.NotFound = true
	}
	return stdout.Bytes(), stderr.Bytes(), cmdErr
}

// CommandError describes a command that could not be started or exited
// non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	NotFound bool
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case e.NotFound:
		return fmt.Sprintf("%s: command not found", e.Command)
	case e.ExitCode >= 0 && e.Stderr != "":
		return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.ExitCode, e.Stderr)
	case e.ExitCode >= 0:
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means the binary does not exist.
func IsNotFound(err error) bool {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.NotFound
	}
	return errors.Is(err, exec.ErrNotFound)
}

// ExitCode returns the exit status carried by err, or -1.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
