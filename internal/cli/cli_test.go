package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/procs"
	"github.com/yabaduma/retheme/internal/wal"
)

const testPalette = `{
    "special": {"background": "#1a1b26", "foreground": "#c0caf5"},
    "colors": {"color1": "#f7768e", "color2": "#9ece6a", "color3": "#e0af02",
               "color4": "#7aa2f7", "color6": "#7dcfff", "color8": "#565f89"}
}`

type fakeExecutor struct {
	mu       sync.Mutex
	running  bool
	commands []string
}

func (f *fakeExecutor) Exec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.commands = append(f.commands, cmd)
	if name == "pgrep" && !f.running {
		return nil, nil, &procs.CommandError{Command: cmd, ExitCode: 1}
	}
	return nil, nil, nil
}

type testEnv struct {
	dir     string
	config  string
	palette string
	envFile string
	vscode  string
	zedDir  string
	exec    *fakeExecutor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("RETHEME_NO_PROGRESS", "1")

	env := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		palette: filepath.Join(dir, "wal", "colors.json"),
		envFile: filepath.Join(dir, "sketchybar", "colors.env"),
		vscode:  filepath.Join(dir, "code", "settings.json"),
		zedDir:  filepath.Join(dir, "zed", "themes"),
		exec:    &fakeExecutor{},
	}
	content := fmt.Sprintf(`
palette:
  file: %s
  tool: %s
bar:
  env_file: %s
vscode:
  settings: %s
zed:
  themes_dir: %s
  settings: %s
history:
  path: %s
logging:
  file: %s
`, env.palette, filepath.Join(dir, "bin", "wal"), env.envFile, env.vscode, env.zedDir,
		filepath.Join(dir, "zed", "settings.json"), filepath.Join(dir, "history.db"),
		filepath.Join(dir, "retheme.log"))
	require.NoError(t, os.WriteFile(env.config, []byte(content), 0o644))

	original := newExecutor
	newExecutor = func() procs.Executor { return env.exec }
	t.Cleanup(func() { newExecutor = original })
	return env
}

func (e *testEnv) writePalette(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(e.palette), 0o755))
	require.NoError(t, os.WriteFile(e.palette, []byte(testPalette), 0o644))
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose, noColor, jsonOutput, noProgress, nonInteractive = "", false, false, false, false, false
	themeName = "palette"
	colorsEnv = false
	historyLimit, historyFailed, historySince = 20, false, 0
	appConfig = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestReload_MissingPaletteStillAppliesBar(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	require.True(t, strings.HasPrefix(lines[0], "OK   bar"), lines[0])
	require.True(t, strings.HasPrefix(lines[1], "SKIP vscode"), lines[1])
	require.True(t, strings.HasPrefix(lines[2], "SKIP zed"), lines[2])
	require.True(t, strings.HasPrefix(lines[3], "OK   borders"), lines[3])
	require.True(t, strings.HasPrefix(lines[4], "SKIP sketchybar"), lines[4])
	require.Equal(t, "theme applied (2 succeeded, 3 skipped, 0 failed)", lines[5])

	require.FileExists(t, env.envFile)
	require.Equal(t, []string{"brew services restart borders", "pgrep -x sketchybar"}, env.exec.commands)
}

func TestReload_AppliesPaletteToEditors(t *testing.T) {
	env := newTestEnv(t)
	env.writePalette(t)
	env.exec.running = true
	require.NoError(t, os.MkdirAll(filepath.Dir(env.vscode), 0o755))
	require.NoError(t, os.WriteFile(env.vscode, []byte(`{"editor.fontSize": 13}`), 0o644))
	require.NoError(t, os.MkdirAll(env.zedDir, 0o755))

	out, err := env.run(t)
	require.NoError(t, err)
	require.Contains(t, out, "theme applied (5 succeeded, 0 skipped, 0 failed)")

	data, err := os.ReadFile(env.vscode)
	require.NoError(t, err)
	require.Contains(t, string(data), `"editor.fontSize": 13`)
	require.Contains(t, string(data), `"editor.background": "#33343f"`)
	require.FileExists(t, filepath.Join(env.zedDir, "pywal.json"))
	require.Contains(t, env.exec.commands, "sketchybar --reload")
}

func TestReload_StylesFollowTheRunPalette(t *testing.T) {
	env := newTestEnv(t)
	env.writePalette(t)

	_, err := env.run(t)
	require.NoError(t, err)
	require.NotNil(t, activeStyles)

	p, err := palette.Read(env.palette)
	require.NoError(t, err)
	want := stylesFor(palette.Derive(p))

	// Later status lines must not go back to disk for the palette.
	require.NoError(t, os.Remove(env.palette))
	require.Equal(t, want, outputStyles())
}

func TestReload_MissingWallpaperFailsBeforeWriters(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, filepath.Join(env.dir, "missing.jpg"))
	require.Error(t, err)
	require.True(t, errors.Is(err, wal.ErrWallpaperNotFound))

	var preflight *PreflightError
	require.True(t, errors.As(err, &preflight))
	require.NoFileExists(t, env.envFile)
	require.Empty(t, env.exec.commands)
}

func TestReload_NothingApplied(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("RETHEME_BAR_ENABLED", "false")
	t.Setenv("RETHEME_BORDERS_ENABLED", "false")
	t.Setenv("RETHEME_ZED_ENABLED", "false")

	out, err := env.run(t)
	require.ErrorIs(t, err, ErrNothingApplied)
	require.Contains(t, out, "nothing applied (0 succeeded, 1 skipped, 0 failed)")
}

func TestReload_JSONAndHistory(t *testing.T) {
	env := newTestEnv(t)
	env.writePalette(t)

	out, err := env.run(t, "--json")
	require.NoError(t, err)

	var run models.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.True(t, run.Succeeded)
	require.Equal(t, "#1a1b26", run.Palette)

	out, err = env.run(t, "history", "--json")
	require.NoError(t, err)
	var runs []models.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	require.Equal(t, run.ID, runs[0].ID)
	require.Len(t, runs[0].Steps, len(run.Steps))

	out, err = env.run(t, "history", "show", run.ID[:8])
	require.NoError(t, err)
	require.Contains(t, out, "Run "+run.ID)
	require.Contains(t, out, "OK   bar")
}

func TestColors(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "colors")
	require.NoError(t, err)
	require.Contains(t, out, "export BAR_COLOR=0x00000000\n")

	env.writePalette(t)
	out, err = env.run(t, "colors")
	require.NoError(t, err)
	require.Contains(t, out, "export ACCENT_COLOR=0xfff7768e\n")

	out, err = env.run(t, "colors", "--env")
	require.NoError(t, err)
	require.Contains(t, out, `ACCENT_COLOR="0xfff7768e"`)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "preview")
	var preflight *PreflightError
	require.True(t, errors.As(err, &preflight))

	env.writePalette(t)
	out, err := env.run(t, "preview", "--json")
	require.NoError(t, err)

	var roles map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &roles))
	require.Equal(t, "#53545c", roles["selection-background"])
	require.Len(t, roles, 10)

	out, err = env.run(t, "preview")
	require.NoError(t, err)
	require.Contains(t, out, "background-lightened")
	require.Contains(t, out, "0xff33343f")
}

func TestDoctor(t *testing.T) {
	env := newTestEnv(t)
	env.writePalette(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.vscode), 0o755))
	require.NoError(t, os.WriteFile(env.vscode, []byte(`{"a": `), 0o644))

	out, err := env.run(t, "doctor", "--json")
	require.Error(t, err)

	var results []checkResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))

	byName := map[string]checkResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	require.Equal(t, checkOK, byName["Config"].Level)
	require.Equal(t, checkOK, byName["Colors"].Level)
	require.Equal(t, checkWarn, byName["wal"].Level)
	require.Equal(t, checkFail, byName["VS Code"].Level)
	require.Equal(t, checkWarn, byName["Zed themes"].Level)
	require.Equal(t, checkOK, byName["Database"].Level)
}

func TestPreflightErrorFormat(t *testing.T) {
	err := &PreflightError{Message: "boom", Hint: "try again", NextStep: "retheme doctor"}
	require.Equal(t, "boom\nHint: try again\nNext: retheme doctor", err.Error())
}
