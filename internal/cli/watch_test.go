package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPaletteWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.json")

	var calls atomic.Int32
	applied := make(chan struct{}, 4)
	w := &paletteWatcher{
		path:     path,
		debounce: 100 * time.Millisecond,
		logger:   zerolog.Nop(),
		ready:    make(chan struct{}),
		apply: func(ctx context.Context) error {
			calls.Add(1)
			applied <- struct{}{}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.ready:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not start")
	}

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(testPalette), 0o644); err != nil {
			t.Fatalf("write palette: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write other: %v", err)
	}

	select {
	case <-applied:
	case <-time.After(3 * time.Second):
		t.Fatal("expected the palette change to be applied")
	}
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 apply for a burst of writes, got %d", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestPaletteWatcher_MissingDirectory(t *testing.T) {
	w := &paletteWatcher{
		path:   filepath.Join(t.TempDir(), "absent", "colors.json"),
		logger: zerolog.Nop(),
		apply:  func(context.Context) error { return nil },
	}
	err := w.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
	if _, ok := err.(*PreflightError); !ok {
		t.Fatalf("expected PreflightError, got %T", err)
	}
}
