package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/config"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/theme"
	"github.com/yabaduma/retheme/internal/wal"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkLevel string

const (
	checkOK   checkLevel = "OK"
	checkWarn checkLevel = "WARN"
	checkFail checkLevel = "FAIL"
)

type checkResult struct {
	Section string     `json:"section"`
	Name    string     `json:"name"`
	Level   checkLevel `json:"level"`
	Detail  string     `json:"detail"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the palette, consumers and external commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		results := runChecks(cmd.Context(), GetConfig())

		if IsJSONOutput() {
			if err := WriteOutput(out, results); err != nil {
				return err
			}
		} else {
			printChecks(out, results)
		}

		for _, r := range results {
			if r.Level == checkFail {
				return errors.New("doctor found problems")
			}
		}
		return nil
	},
}

func runChecks(ctx context.Context, cfg *config.Config) []checkResult {
	var results []checkResult
	add := func(section, name string, level checkLevel, detail string) {
		results = append(results, checkResult{Section: section, Name: name, Level: level, Detail: detail})
	}

	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	if fileExists(configPath) {
		add("Paths", "Config", checkOK, configPath)
	} else {
		add("Paths", "Config", checkWarn, configPath+" (using defaults)")
	}

	if p, err := palette.Read(cfg.Palette.File); err != nil {
		useOutputPalette(nil)
		add("Palette", "Colors", checkWarn, err.Error())
	} else {
		useOutputPalette(palette.Derive(p))
		add("Palette", "Colors", checkOK, cfg.Palette.File)
	}
	tool := wal.Locate(cfg.Palette.Tool, homeDir())
	if fileExists(tool) {
		add("Palette", "wal", checkOK, tool)
	} else {
		add("Palette", "wal", checkWarn, tool+" not found; wallpapers cannot be analyzed")
	}

	if cfg.Bar.Enabled {
		dir := filepath.Dir(cfg.Bar.EnvFile)
		if dirExists(dir) {
			add("Consumers", "Bar env", checkOK, cfg.Bar.EnvFile)
		} else {
			add("Consumers", "Bar env", checkWarn, dir+" will be created")
		}
	}
	if cfg.VSCode.Enabled {
		level, detail := checkSettings(cfg.VSCode.Settings, func(data []byte) error {
			_, err := theme.ParseSettings(data)
			return err
		})
		add("Consumers", "VS Code", level, detail)
	}
	if cfg.Zed.Enabled {
		if dirExists(cfg.Zed.ThemesDir) {
			add("Consumers", "Zed themes", checkOK, cfg.Zed.ThemesDir)
		} else {
			add("Consumers", "Zed themes", checkWarn, cfg.Zed.ThemesDir+" not found; Zed will be skipped")
		}
		level, detail := checkSettings(cfg.Zed.Settings, func(data []byte) error {
			_, err := theme.PatchThemeSelector(data, theme.ThemeSelector{Mode: "system"})
			return err
		})
		add("Consumers", "Zed settings", level, detail)
	}

	var commands []string
	if cfg.Borders.Enabled {
		commands = append(commands, "brew")
	}
	if cfg.Bar.Enabled {
		commands = append(commands, "pgrep", cfg.Bar.Process)
	}
	for _, name := range commands {
		switch path, err := exec.LookPath(name); {
		case err == nil:
			add("Commands", name, checkOK, path)
		case name == "brew":
			add("Commands", name, checkWarn, "not found in PATH; the borders restart will fail")
		default:
			add("Commands", name, checkWarn, "not found in PATH; its reload will be skipped")
		}
	}

	if cfg.History.Enabled {
		database, err := openHistory(ctx, cfg)
		if err != nil {
			add("History", "Database", checkFail, err.Error())
		} else {
			database.Close()
			add("History", "Database", checkOK, cfg.History.Path)
		}
	}
	return results
}

func checkSettings(path string, parse func([]byte) error) (checkLevel, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return checkWarn, path + " not found; will be skipped"
		}
		return checkFail, err.Error()
	}
	if err := parse(data); err != nil {
		return checkFail, fmt.Sprintf("%s: %v", path, err)
	}
	return checkOK, path
}

func printChecks(out io.Writer, results []checkResult) {
	s := outputStyles()
	section := ""
	for _, r := range results {
		if r.Section != section {
			if section != "" {
				fmt.Fprintln(out)
			}
			section = r.Section
			fmt.Fprintln(out, colorize(section, s.Title))
		}
		style := s.Success
		switch r.Level {
		case checkWarn:
			style = s.Warning
		case checkFail:
			style = s.Error
		}
		fmt.Fprintf(out, "  %-14s %s %s\n", r.Name, colorize(fmt.Sprintf("%-4s", r.Level), style), r.Detail)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
