package cli

import (
	"os"

	"golang.org/x/term"
)

// IsNonInteractive reports whether output should be treated as non-terminal.
func IsNonInteractive() bool {
	if nonInteractive {
		return true
	}
	if _, ok := os.LookupEnv("RETHEME_NON_INTERACTIVE"); ok {
		return true
	}
	return !hasTTY()
}

// IsInteractive reports whether stdout is a terminal a user is watching.
func IsInteractive() bool {
	return !IsNonInteractive()
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// colorEnabled reports whether styled output should be used.
func colorEnabled() bool {
	if noColor || jsonOutput {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsInteractive()
}
