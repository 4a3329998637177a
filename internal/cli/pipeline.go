package cli

import (
	"context"
	"io"
	"os"

	"github.com/yabaduma/retheme/internal/config"
	"github.com/yabaduma/retheme/internal/db"
	"github.com/yabaduma/retheme/internal/logging"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/procs"
	"github.com/yabaduma/retheme/internal/reload"
	"github.com/yabaduma/retheme/internal/theme"
	"github.com/yabaduma/retheme/internal/wal"
)

// newExecutor is replaced in tests.
var newExecutor = func() procs.Executor { return procs.LocalExecutor{} }

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// buildWriters returns the enabled consumer writers in run order.
func buildWriters(cfg *config.Config) []theme.Writer {
	var writers []theme.Writer
	if cfg.Bar.Enabled {
		writers = append(writers, theme.NewBarWriter(cfg.Bar.EnvFile))
	}
	if cfg.VSCode.Enabled {
		writers = append(writers, theme.NewVSCodeWriter(cfg.VSCode.Settings))
	}
	if cfg.Zed.Enabled {
		writers = append(writers, theme.NewZedWriter(theme.ZedOptions{
			ThemesDir:    cfg.Zed.ThemesDir,
			ThemeFile:    cfg.Zed.ThemeFile,
			SettingsPath: cfg.Zed.Settings,
			ThemeName:    cfg.Zed.ThemeName,
			LightTheme:   cfg.Zed.LightTheme,
			Author:       cfg.Zed.Author,
		}))
	}
	return writers
}

// buildSteps returns the enabled reload steps in run order.
func buildSteps(cfg *config.Config, client *procs.Client) []reload.Step {
	var steps []reload.Step
	if cfg.Borders.Enabled {
		steps = append(steps, reload.ServiceRestart{Client: client, Label: "borders", Service: cfg.Borders.Service})
	}
	if cfg.Bar.Enabled {
		steps = append(steps, reload.BarReload{Client: client, Label: cfg.Bar.Process, Process: cfg.Bar.Process})
	}
	return steps
}

func buildOrchestrator(cfg *config.Config, exec procs.Executor, progress io.Writer, onStep func(models.StepResult)) *reload.Orchestrator {
	var generator reload.Generator = wal.NewGenerator(exec, wal.Locate(cfg.Palette.Tool, homeDir()))
	if progress != nil {
		generator = progressGenerator{inner: generator, out: progress}
	}

	return &reload.Orchestrator{
		PaletteFile: cfg.Palette.File,
		Generator:   generator,
		Writers:     buildWriters(cfg),
		Steps:       buildSteps(cfg, procs.NewClient(exec)),
		Logger:      logging.Component("reload"),
		OnPalette:   useOutputPalette,
		OnStep:      onStep,
	}
}

// recordHistory stores run and trims old entries. Failures only log.
func recordHistory(ctx context.Context, cfg *config.Config, run *models.Run) {
	if !cfg.History.Enabled || run == nil {
		return
	}
	logger := logging.Component("history")

	database, err := openHistory(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable")
		return
	}
	defer database.Close()

	repo := db.NewRunRepository(database)
	if err := repo.Create(ctx, run); err != nil {
		logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to record run")
		return
	}
	if removed, err := repo.Prune(ctx, cfg.History.Limit); err != nil {
		logger.Warn().Err(err).Msg("failed to prune history")
	} else if removed > 0 {
		logger.Debug().Int64("removed", removed).Msg("pruned history")
	}
}

func openHistory(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(ctx, cfg.History.Path)
	if err != nil {
		return nil, err
	}
	if _, err := database.MigrateUp(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
