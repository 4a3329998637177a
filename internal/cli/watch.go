package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/logging"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/reload"
)

var (
	watchDebounce time.Duration
	watchInitial  bool
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-applying (default from config)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "apply the current palette once before watching")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-apply the palette whenever it changes",
	Long: `Watch the palette file and re-apply it to every consumer after it changes,
for example when wal is run by another tool. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		debounce := cfg.Watch.Debounce
		if cmd.Flags().Changed("debounce") {
			debounce = watchDebounce
		}

		apply := func(ctx context.Context) error {
			orch := buildOrchestrator(cfg, newExecutor(), nil, func(result models.StepResult) {
				if !IsJSONOutput() {
					fmt.Fprintln(out, formatStepLine(result))
				}
			})
			run, err := orch.Run(ctx, reload.Options{})
			recordHistory(ctx, cfg, run)
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return WriteOutput(out, run)
			}
			fmt.Fprintln(out, reload.Verdict(run))
			return nil
		}

		if watchInitial {
			if err := apply(ctx); err != nil {
				return err
			}
		}

		w := &paletteWatcher{
			path:     cfg.Palette.File,
			debounce: debounce,
			apply:    apply,
			logger:   logging.Component("watch"),
		}
		if !IsJSONOutput() {
			fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", cfg.Palette.File)
		}
		return w.Run(ctx)
	},
}

// paletteWatcher calls apply once per burst of changes to path. The parent
// directory is watched because wal replaces the file rather than writing it
// in place.
type paletteWatcher struct {
	path     string
	debounce time.Duration
	apply    func(ctx context.Context) error
	logger   zerolog.Logger
	// ready, when set, is closed once the watch is registered.
	ready chan struct{}
}

func (w *paletteWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return &PreflightError{
			Message:  fmt.Sprintf("cannot watch %s", dir),
			Hint:     "The palette directory must exist; run wal once first",
			NextStep: "retheme <wallpaper>",
			Err:      err,
		}
	}
	if w.ready != nil {
		close(w.ready)
	}

	target := filepath.Clean(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("palette changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		case <-fire:
			fire = nil
			if err := w.apply(ctx); err != nil {
				w.logger.Error().Err(err).Msg("re-apply failed")
			}
		}
	}
}
