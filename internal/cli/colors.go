package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/logging"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/theme"
)

var colorsEnv bool

func init() {
	rootCmd.AddCommand(colorsCmd)
	colorsCmd.Flags().BoolVar(&colorsEnv, "env", false, "print env-file lines instead of shell exports")
}

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Print the status bar color exports",
	Long: `Print the status bar and border colors for the current palette as
"export NAME=value" lines, ready to be sourced by a shell. When the palette
is unavailable the built-in defaults are printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		derived := currentPalette()
		useOutputPalette(derived)
		colors := theme.BarColorsFor(derived)

		if IsJSONOutput() {
			return WriteOutput(out, colors.Map())
		}
		if colorsEnv {
			env, err := colors.Env()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, env)
			return err
		}
		return colors.WriteExports(out)
	},
}

// currentPalette reads and derives the configured palette, or returns nil.
func currentPalette() *palette.Derived {
	p, err := palette.Read(GetConfig().Palette.File)
	if err != nil {
		logging.Component("cli").Debug().Err(err).Msg("palette unavailable")
		return nil
	}
	return palette.Derive(p)
}
