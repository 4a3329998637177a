package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yabaduma/retheme/internal/palette"
	"github.com/yabaduma/retheme/internal/styles"
)

func init() {
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the derived color roles",
	Long:  "Show every derived color role of the current palette with a color swatch.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := GetConfig().Palette.File

		p, err := palette.Read(path)
		if err != nil {
			return &PreflightError{
				Message:  "no palette to preview",
				Hint:     err.Error(),
				NextStep: "retheme <wallpaper>",
				Err:      err,
			}
		}
		derived := palette.Derive(p)
		useOutputPalette(derived)
		roles := derived.Roles()

		if IsJSONOutput() {
			values := make(map[string]string, len(roles))
			for _, rc := range roles {
				values[string(rc.Role)] = rc.Color.HashHex()
			}
			return WriteOutput(out, values)
		}

		s := outputStyles()
		fmt.Fprintln(out, colorize("Palette "+path, s.Title))
		rows := make([][]string, 0, len(roles))
		for _, rc := range roles {
			hex := rc.Color.HashHex()
			swatch := ""
			if colorEnabled() {
				swatch = styles.Swatch(hex, 4)
			}
			rows = append(rows, []string{string(rc.Role), hex, rc.Color.ARGB(), swatch})
		}
		return writeTable(out, []string{"ROLE", "HEX", "ARGB", ""}, rows)
	},
}
