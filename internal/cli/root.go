// Package cli implements the retheme command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/config"
	"github.com/yabaduma/retheme/internal/logging"
)

var (
	cfgFile        string
	verbose        bool
	noColor        bool
	jsonOutput     bool
	noProgress     bool
	nonInteractive bool
	themeName      string

	appConfig *config.Config
	logCloser io.Closer
)

// ErrNothingApplied is returned when a run finished without any step
// succeeding. The verdict line has already been printed.
var ErrNothingApplied = errors.New("nothing applied")

// PreflightError is a user-facing error with a suggested fix.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
	Err      error
}

func (e *PreflightError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}
	if e.NextStep != "" {
		b.WriteString("\nNext: ")
		b.WriteString(e.NextStep)
	}
	return b.String()
}

func (e *PreflightError) Unwrap() error { return e.Err }

var rootCmd = &cobra.Command{
	Use:   "retheme [wallpaper]",
	Short: "Apply a wallpaper palette to the bar, borders and editors",
	Long: `retheme regenerates the pywal palette from a wallpaper (when one is given),
writes it into the status bar, VS Code and Zed configuration, and reloads
the border daemon and the status bar.

With no argument the current palette is re-applied.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
			logCloser = nil
		}
	},
	RunE: runReload,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/retheme/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "also log to stderr")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	flags.BoolVar(&noProgress, "no-progress", false, "hide progress output")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never assume a terminal")
	flags.StringVar(&themeName, "theme", "palette", "output colors: palette, default or high-contrast")
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrNothingApplied) {
		fmt.Fprintln(os.Stderr, colorize("Error:", outputStyles().Error)+" "+err.Error())
	}
	return err
}

func initApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return &PreflightError{
			Message:  "could not load configuration",
			Hint:     err.Error(),
			NextStep: "retheme doctor",
			Err:      err,
		}
	}
	appConfig = cfg
	activeStyles = nil

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		NoColor:    !colorEnabled(),
	}
	if verbose {
		logCfg.Console = cmd.ErrOrStderr()
		logCfg.Level = "debug"
	}
	if logCloser != nil {
		logCloser.Close()
	}
	closer, err := logging.Init(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logCloser = closer

	logging.Component("cli").Debug().
		Str("command", cmd.CommandPath()).
		Strs("args", args).
		Msg("starting")
	return nil
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// WriteOutput prints v as indented JSON.
func WriteOutput(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
