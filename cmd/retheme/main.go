// Command retheme applies a wallpaper palette to the desktop.
package main

import (
	"os"

	"github.com/yabaduma/retheme/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
