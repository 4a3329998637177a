package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yabaduma/retheme/internal/reload"
)

type progressStep struct {
	out     io.Writer
	label   string
	started time.Time
	enabled bool
}

func startProgress(out io.Writer, label string) *progressStep {
	if !progressEnabled() {
		return nil
	}
	fmt.Fprintf(out, "%s... ", label)
	return &progressStep{
		out:     out,
		label:   label,
		started: time.Now(),
		enabled: true,
	}
}

func (p *progressStep) Done() {
	if p == nil || !p.enabled {
		return
	}
	fmt.Fprintf(p.out, "done (%s)\n", formatDuration(time.Since(p.started)))
}

func (p *progressStep) Fail(err error) {
	if p == nil || !p.enabled {
		return
	}
	if err != nil {
		fmt.Fprintf(p.out, "failed: %v\n", err)
		return
	}
	fmt.Fprintln(p.out, "failed")
}

func progressEnabled() bool {
	if IsJSONOutput() {
		return false
	}
	if noProgress {
		return false
	}
	if _, ok := os.LookupEnv("RETHEME_NO_PROGRESS"); ok {
		return false
	}
	if _, ok := os.LookupEnv("NO_PROGRESS"); ok {
		return false
	}
	return true
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	if d < time.Second {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// progressGenerator reports palette generation as a progress step.
type progressGenerator struct {
	inner reload.Generator
	out   io.Writer
}

func (g progressGenerator) Generate(ctx context.Context, wallpaper string) error {
	step := startProgress(g.out, "Generating palette from "+wallpaper)
	if err := g.inner.Generate(ctx, wallpaper); err != nil {
		step.Fail(err)
		return err
	}
	step.Done()
	return nil
}
