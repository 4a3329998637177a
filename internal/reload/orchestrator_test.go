package reload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yabaduma/retheme/internal/models"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/procs"
	"github.com/yabaduma/retheme/internal/theme"
	"github.com/yabaduma/retheme/internal/wal"
)

const colorsJSON = `{
    "special": {"background": "#1a1b26", "foreground": "#c0caf5"},
    "colors": {"color1": "#f7768e", "color2": "#9ece6a", "color3": "#e0af02",
               "color4": "#7aa2f7", "color6": "#7dcfff", "color8": "#565f89"}
}`

type recordingWriter struct {
	name   string
	status models.Status
	calls  int
	got    *palette.Derived
}

func (w *recordingWriter) Name() string { return w.name }

func (w *recordingWriter) Write(ctx context.Context, d *palette.Derived) models.StepResult {
	w.calls++
	w.got = d
	return models.StepResult{Name: w.name, Kind: models.StepKindWriter, Status: w.status}
}

type fakeGenerator struct {
	err    error
	calls  []string
	output string
	path   string
}

func (g *fakeGenerator) Generate(ctx context.Context, wallpaper string) error {
	g.calls = append(g.calls, wallpaper)
	if g.err != nil {
		return g.err
	}
	if g.path != "" {
		return os.WriteFile(g.path, []byte(g.output), 0o644)
	}
	return nil
}

type fakeExecutor struct {
	running  bool
	failBrew bool
	commands []string
}

func (f *fakeExecutor) Exec(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.commands = append(f.commands, cmd)
	switch {
	case name == "pgrep" && !f.running:
		return nil, nil, &procs.CommandError{Command: cmd, ExitCode: 1}
	case name == "brew" && f.failBrew:
		return nil, []byte("boom"), &procs.CommandError{Command: cmd, ExitCode: 1, Stderr: "boom"}
	}
	return nil, nil, nil
}

func paletteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colors.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return path
}

func TestRun_MissingWallpaperIsHardFailure(t *testing.T) {
	path := paletteFile(t, colorsJSON)
	exec := &fakeExecutor{}
	writer := &recordingWriter{name: "bar", status: models.StatusSucceeded}

	o := &Orchestrator{
		PaletteFile: path,
		Generator:   wal.NewGenerator(exec, "wal"),
		Writers:     []theme.Writer{writer},
		Logger:      zerolog.Nop(),
	}

	run, err := o.Run(context.Background(), Options{Wallpaper: filepath.Join(t.TempDir(), "missing.jpg")})
	require.ErrorIs(t, err, wal.ErrWallpaperNotFound)
	require.False(t, run.Succeeded)
	require.NotEmpty(t, run.Error)
	require.Equal(t, 0, writer.calls)
	require.Empty(t, exec.commands)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, colorsJSON, string(data))
}

func TestRun_PaletteToolFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w: exit status 1", wal.ErrPaletteTool)}
	writer := &recordingWriter{name: "bar", status: models.StatusSucceeded}
	o := &Orchestrator{PaletteFile: paletteFile(t, colorsJSON), Generator: gen, Writers: []theme.Writer{writer}, Logger: zerolog.Nop()}

	_, err := o.Run(context.Background(), Options{Wallpaper: "/tmp/x.jpg"})
	require.ErrorIs(t, err, wal.ErrPaletteTool)
	require.Equal(t, 0, writer.calls)
}

func TestRun_GeneratesThenReads(t *testing.T) {
	path := paletteFile(t, "")
	gen := &fakeGenerator{path: path, output: colorsJSON}
	writer := &recordingWriter{name: "vscode", status: models.StatusSucceeded}
	var notified []*palette.Derived
	o := &Orchestrator{
		PaletteFile: path,
		Generator:   gen,
		Writers:     []theme.Writer{writer},
		Logger:      zerolog.Nop(),
		OnPalette:   func(d *palette.Derived) { notified = append(notified, d) },
	}

	run, err := o.Run(context.Background(), Options{Wallpaper: "/img.png"})
	require.NoError(t, err)
	require.Equal(t, []string{"/img.png"}, gen.calls)
	require.NotNil(t, writer.got)
	require.Len(t, notified, 1)
	require.Same(t, writer.got, notified[0])
	require.Equal(t, "#1a1b26", run.Palette)
	require.True(t, run.Succeeded)
}

func TestRun_NoWallpaperSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	o := &Orchestrator{PaletteFile: paletteFile(t, colorsJSON), Generator: gen, Logger: zerolog.Nop()}

	run, err := o.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Empty(t, gen.calls)
	require.False(t, run.Succeeded, "no steps means nothing applied")
}

func TestRun_MissingPaletteBarStillSucceeds(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{}
	client := procs.NewClient(exec)

	var seen []string
	o := &Orchestrator{
		PaletteFile: filepath.Join(dir, "absent.json"),
		Writers: []theme.Writer{
			theme.NewBarWriter(filepath.Join(dir, "colors.env")),
			theme.NewVSCodeWriter(filepath.Join(dir, "settings.json")),
			theme.NewZedWriter(theme.ZedOptions{ThemesDir: filepath.Join(dir, "themes")}),
		},
		Steps: []Step{
			BarReload{Client: client, Label: "sketchybar", Process: "sketchybar"},
		},
		Logger: zerolog.Nop(),
		OnStep: func(r models.StepResult) { seen = append(seen, r.Name+":"+string(r.Status)) },
	}

	run, err := o.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.True(t, run.Succeeded)
	require.Empty(t, run.Palette)
	require.Equal(t, []string{
		"bar:succeeded",
		"vscode:skipped",
		"zed:skipped",
		"sketchybar:skipped",
	}, seen)
	require.FileExists(t, filepath.Join(dir, "colors.env"))
}

func TestRun_AllSkippedOrFailedIsFailure(t *testing.T) {
	exec := &fakeExecutor{failBrew: true}
	client := procs.NewClient(exec)
	o := &Orchestrator{
		PaletteFile: paletteFile(t, colorsJSON),
		Writers: []theme.Writer{
			&recordingWriter{name: "vscode", status: models.StatusSkipped},
			&recordingWriter{name: "zed", status: models.StatusFailed},
		},
		Steps: []Step{
			ServiceRestart{Client: client, Label: "borders", Service: "borders"},
			BarReload{Client: client, Label: "sketchybar", Process: "sketchybar"},
		},
		Logger: zerolog.Nop(),
	}

	run, err := o.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.False(t, run.Succeeded)
	require.Len(t, run.Steps, 4)
	require.Equal(t, []string{"brew services restart borders", "pgrep -x sketchybar"}, exec.commands)
	require.Equal(t, "nothing applied (0 succeeded, 2 skipped, 2 failed)", Verdict(run))
}

func TestRun_FailureDoesNotBlockSiblings(t *testing.T) {
	first := &recordingWriter{name: "a", status: models.StatusFailed}
	second := &recordingWriter{name: "b", status: models.StatusSucceeded}
	exec := &fakeExecutor{running: true}
	o := &Orchestrator{
		PaletteFile: paletteFile(t, colorsJSON),
		Writers:     []theme.Writer{first, second},
		Steps:       []Step{BarReload{Client: procs.NewClient(exec), Label: "sketchybar", Process: "sketchybar"}},
		Logger:      zerolog.Nop(),
	}

	run, err := o.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Equal(t, 1, second.calls)
	require.True(t, run.Succeeded)
	require.Equal(t, []string{"pgrep -x sketchybar", "sketchybar --reload"}, exec.commands)
	require.Same(t, first.got, second.got, "palette is derived once")
}

func TestRun_CancelledStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	writer := &recordingWriter{name: "bar", status: models.StatusSucceeded}
	o := &Orchestrator{PaletteFile: paletteFile(t, colorsJSON), Writers: []theme.Writer{writer}, Logger: zerolog.Nop()}

	run, err := o.Run(ctx, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, writer.calls)
	require.True(t, errors.Is(ctx.Err(), context.Canceled))
	require.NotEmpty(t, run.Error)
}

func TestAggregate(t *testing.T) {
	require.False(t, Aggregate(nil))
	require.False(t, Aggregate([]models.StepResult{{Status: models.StatusSkipped}, {Status: models.StatusFailed}}))
	require.True(t, Aggregate([]models.StepResult{{Status: models.StatusFailed}, {Status: models.StatusSucceeded}}))
}

func TestVerdict_HardFailure(t *testing.T) {
	run := &models.Run{Error: "wallpaper not found: /x"}
	require.Equal(t, "reload failed: wallpaper not found: /x", Verdict(run))
}
