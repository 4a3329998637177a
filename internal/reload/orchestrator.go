// Package reload sequences palette generation, the theme writers and the
// process reloads, and folds their outcomes into one verdict.
package reload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/procs"
	"github.com/yabaduma/retheme/internal/theme"
)

// Generator regenerates the palette file from a wallpaper.
type Generator interface {
	Generate(ctx context.Context, wallpaper string) error
}

// Step is a reload action run after all writers.
type Step interface {
	Name() string
	Run(ctx context.Context) models.StepResult
}

// Options controls a single run.
type Options struct {
	// Wallpaper, when set, is analyzed before the palette is read.
	Wallpaper string
}

// Orchestrator runs the pipeline. Steps run one at a time in order.
type Orchestrator struct {
	PaletteFile string
	Generator   Generator
	Writers     []theme.Writer
	Steps       []Step
	Logger      zerolog.Logger
	// OnPalette is called once per run with the derived palette, or nil
	// when it is unavailable, before any writer runs.
	OnPalette func(*palette.Derived)
	// OnStep is called with each result as soon as it is known.
	OnStep func(models.StepResult)
	Now    func() time.Time
}

// Run executes the pipeline. A non-nil error means a hard failure before any
// writer ran; the returned record is still populated for history.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*models.Run, error) {
	now := o.Now
	if now == nil {
		now = time.Now
	}

	run := &models.Run{
		ID:        uuid.NewString(),
		StartedAt: now(),
		Wallpaper: opts.Wallpaper,
	}
	logger := o.Logger.With().Str("run_id", run.ID).Logger()

	if opts.Wallpaper != "" {
		if o.Generator == nil {
			return o.abort(run, now, errors.New("no palette generator configured"))
		}
		logger.Info().Str("wallpaper", opts.Wallpaper).Msg("generating palette")
		if err := o.Generator.Generate(ctx, opts.Wallpaper); err != nil {
			logger.Error().Err(err).Msg("palette generation failed")
			return o.abort(run, now, err)
		}
	}

	var derived *palette.Derived
	p, err := palette.Read(o.PaletteFile)
	if err != nil {
		logger.Warn().Err(err).Msg("palette unavailable")
	} else {
		derived = palette.Derive(p)
		run.Palette = derived.Background.HashHex()
		logger.Debug().Str("background", run.Palette).Msg("palette derived")
	}
	if o.OnPalette != nil {
		o.OnPalette(derived)
	}

	for _, w := range o.Writers {
		if ctx.Err() != nil {
			break
		}
		o.record(run, logger, w.Write(ctx, derived))
	}
	for _, s := range o.Steps {
		if ctx.Err() != nil {
			break
		}
		o.record(run, logger, s.Run(ctx))
	}

	run.Succeeded = Aggregate(run.Steps)
	run.FinishedAt = now()
	if ctx.Err() != nil {
		run.Error = ctx.Err().Error()
	}

	succeeded, skipped, failed := run.Counts()
	logger.Info().
		Bool("succeeded", run.Succeeded).
		Int("steps_succeeded", succeeded).
		Int("steps_skipped", skipped).
		Int("steps_failed", failed).
		Msg("reload finished")
	return run, nil
}

func (o *Orchestrator) abort(run *models.Run, now func() time.Time, err error) (*models.Run, error) {
	run.Error = err.Error()
	run.FinishedAt = now()
	return run, err
}

func (o *Orchestrator) record(run *models.Run, logger zerolog.Logger, result models.StepResult) {
	run.Steps = append(run.Steps, result)

	event := logger.Info()
	if result.Status == models.StatusFailed {
		event = logger.Warn().Err(result.Err)
	}
	event.Str("step", result.Name).
		Str("status", string(result.Status)).
		Str("reason", result.Reason).
		Dur("duration", result.Duration).
		Msg("step finished")

	if o.OnStep != nil {
		o.OnStep(result)
	}
}

// Aggregate is true when any step succeeded.
func Aggregate(results []models.StepResult) bool {
	for _, r := range results {
		if r.Status == models.StatusSucceeded {
			return true
		}
	}
	return false
}

// ServiceRestart restarts a service-managed daemon.
type ServiceRestart struct {
	Client  *procs.Client
	Label   string
	Service string
}

func (s ServiceRestart) Name() string { return s.Label }

func (s ServiceRestart) Run(ctx context.Context) models.StepResult {
	return s.Client.RestartService(ctx, s.Label, s.Service)
}

// BarReload reloads the status bar if it is running.
type BarReload struct {
	Client  *procs.Client
	Label   string
	Process string
}

func (b BarReload) Name() string { return b.Label }

func (b BarReload) Run(ctx context.Context) models.StepResult {
	return b.Client.ReloadBar(ctx, b.Label, b.Process)
}

// Verdict renders the one-line summary of a run.
func Verdict(run *models.Run) string {
	if run.Error != "" && len(run.Steps) == 0 {
		return "reload failed: " + run.Error
	}
	succeeded, skipped, failed := run.Counts()
	state := "theme applied"
	if !run.Succeeded {
		state = "nothing applied"
	}
	return fmt.Sprintf("%s (%d succeeded, %d skipped, %d failed)", state, succeeded, skipped, failed)
}
