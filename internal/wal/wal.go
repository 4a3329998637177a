// Package wal locates and drives the pywal palette generator.
package wal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/yabaduma/retheme/internal/procs"
)

var (
	// ErrWallpaperNotFound means the requested image does not exist.
	ErrWallpaperNotFound = errors.New("wallpaper not found")
	// ErrPaletteTool means the palette generator is missing or failed.
	ErrPaletteTool = errors.New("palette tool failed")
)

// pythonVersions are the user-site versions searched, newest first.
var pythonVersions = []string{"3.14", "3.13", "3.12", "3.11", "3.10", "3.9"}

// Locate finds the wal binary. A configured path wins, then $PATH, then the
// per-user Python install directories under home. When nothing is found the
// newest user-site path is returned so the eventual error names it.
func Locate(configured, home string) string {
	if configured != "" {
		return configured
	}
	if path, err := exec.LookPath("wal"); err == nil {
		return path
	}
	for _, version := range pythonVersions {
		candidate := userSitePath(home, version)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return userSitePath(home, pythonVersions[0])
}

func userSitePath(home, version string) string {
	return filepath.Join(home, "Library", "Python", version, "bin", "wal")
}

// Args returns the generator arguments: skip terminal sequences, skip the
// tty reload and leave the desktop wallpaper alone.
func Args(wallpaper string) []string {
	return []string{"-s", "-t", "-n", "-i", wallpaper}
}

// Generator runs wal against a wallpaper.
type Generator struct {
	exec procs.Executor
	tool string
}

// NewGenerator creates a Generator for the wal binary at tool.
func NewGenerator(exec procs.Executor, tool string) *Generator {
	return &Generator{exec: exec, tool: tool}
}

// Tool returns the binary the generator invokes.
func (g *Generator) Tool() string { return g.tool }

// Generate regenerates the palette file from wallpaper. The wallpaper must
// exist; every failure wraps ErrWallpaperNotFound or ErrPaletteTool.
func (g *Generator) Generate(ctx context.Context, wallpaper string) error {
	info, err := os.Stat(wallpaper)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWallpaperNotFound, wallpaper)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrWallpaperNotFound, wallpaper)
	}

	if _, _, err := g.exec.Exec(ctx, g.tool, Args(wallpaper)...); err != nil {
		if procs.IsNotFound(err) {
			return fmt.Errorf("%w: %s not found", ErrPaletteTool, g.tool)
		}
		return fmt.Errorf("%w: %w", ErrPaletteTool, err)
	}
	return nil
}
