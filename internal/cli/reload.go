package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/config"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/reload"
	"github.com/yabaduma/retheme/internal/wal"
)

func runReload(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var opts reload.Options
	if len(args) == 1 {
		opts.Wallpaper = config.ExpandUser(args[0])
	}

	var progress io.Writer
	onStep := func(models.StepResult) {}
	if !IsJSONOutput() {
		onStep = func(result models.StepResult) {
			fmt.Fprintln(out, formatStepLine(result))
		}
		if progressEnabled() {
			progress = cmd.ErrOrStderr()
		}
	}

	orch := buildOrchestrator(cfg, newExecutor(), progress, onStep)
	run, err := orch.Run(ctx, opts)
	recordHistory(ctx, cfg, run)

	if IsJSONOutput() {
		if writeErr := WriteOutput(out, run); writeErr != nil {
			return writeErr
		}
	}

	if err != nil {
		return reloadError(err, opts.Wallpaper, cfg)
	}

	if !IsJSONOutput() {
		verdict := reload.Verdict(run)
		if run.Succeeded {
			fmt.Fprintln(out, colorize(verdict, outputStyles().Success))
		} else {
			fmt.Fprintln(out, colorize(verdict, outputStyles().Error))
		}
	}
	if !run.Succeeded {
		return ErrNothingApplied
	}
	return nil
}

func reloadError(err error, wallpaper string, cfg *config.Config) error {
	switch {
	case errors.Is(err, wal.ErrWallpaperNotFound):
		return &PreflightError{
			Message:  fmt.Sprintf("wallpaper not found: %s", wallpaper),
			Hint:     "Pass an existing image file, or no argument to re-apply the current palette",
			NextStep: "retheme",
			Err:      err,
		}
	case errors.Is(err, wal.ErrPaletteTool):
		tool := cfg.Palette.Tool
		if tool == "" {
			tool = "wal"
		}
		return &PreflightError{
			Message:  err.Error(),
			Hint:     fmt.Sprintf("Install pywal (pip install --user pywal) or set palette.tool; tried %s", tool),
			NextStep: "retheme doctor",
			Err:      err,
		}
	default:
		return err
	}
}
