package procs

import (
	"context"
	"strings"
	"time"

	"github.com/yabaduma/retheme/internal/models"
)

// Client wraps the reload commands.
type Client struct {
	exec Executor
}

// NewClient creates a new process client.
func NewClient(exec Executor) *Client {
	return &Client{exec: exec}
}

// IsRunning reports whether a process with exactly this name exists.
// pgrep exits 1 when nothing matches, which is not an error.
func (c *Client) IsRunning(ctx context.Context, name string) (bool, error) {
	_, _, err := c.exec.Exec(ctx, "pgrep", "-x", name)
	if err == nil {
		return true, nil
	}
	if ExitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// RestartService runs `brew services restart <service>`. A missing brew is
// a failure like any other command error.
func (c *Client) RestartService(ctx context.Context, step, service string) models.StepResult {
	started := time.Now()
	result := c.restartService(ctx, step, service)
	result.Kind = models.StepKindReload
	result.Duration = time.Since(started)
	return result
}

func (c *Client) restartService(ctx context.Context, step, service string) models.StepResult {
	stdout, _, err := c.exec.Exec(ctx, "brew", "services", "restart", service)
	if err != nil {
		if IsNotFound(err) {
			return models.Failed(step, err, "brew not installed")
		}
		return models.Failed(step, err, "")
	}
	if msg := lastLine(stdout); msg != "" {
		return models.Succeeded(step, msg)
	}
	return models.Succeeded(step, "service restarted")
}

// ReloadBar asks a running status bar to reload. It never starts one.
func (c *Client) ReloadBar(ctx context.Context, step, process string) models.StepResult {
	started := time.Now()
	result := c.reloadBar(ctx, step, process)
	result.Kind = models.StepKindReload
	result.Duration = time.Since(started)
	return result
}

func (c *Client) reloadBar(ctx context.Context, step, process string) models.StepResult {
	running, err := c.IsRunning(ctx, process)
	if err != nil {
		if IsNotFound(err) {
			return models.Skipped(step, "pgrep not available")
		}
		return models.Failed(step, err, "")
	}
	if !running {
		return models.Skipped(step, process+" not running")
	}

	if _, _, err := c.exec.Exec(ctx, process, "--reload"); err != nil {
		return models.Failed(step, err, "")
	}
	return models.Succeeded(step, process+" reloaded")
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
