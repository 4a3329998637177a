package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yabaduma/retheme/internal/palette"
)

const testColors = `{
    "special": {"background": "#1a1b26", "foreground": "#c0caf5"},
    "colors": {
        "color0": "#1a1b26",
        "color1": "#f7768e",
        "color2": "#9ece6a",
        "color3": "#e0af02",
        "color4": "#7aa2f7",
        "color5": "#bb9af7",
        "color6": "#7dcfff",
        "color8": "#565f89"
    }
}`

func testDerived(t *testing.T) *palette.Derived {
	t.Helper()
	p, err := palette.Parse("test", []byte(testColors))
	require.NoError(t, err)
	return palette.Derive(p)
}
