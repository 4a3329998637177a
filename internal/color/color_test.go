package color

import (
	"errors"
	"testing"
)

var samples = []string{"000000", "ffffff", "1a1b26", "f7768e", "9ece6a", "e0af02", "7aa2f7", "7dcfff", "565f89", "010203"}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#1a1b26")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c != (Color{R: 0x1a, G: 0x1b, B: 0x26}) {
		t.Fatalf("unexpected color: %+v", c)
	}

	bare, err := ParseHex("1A1B26")
	if err != nil {
		t.Fatalf("ParseHex without prefix: %v", err)
	}
	if bare != c {
		t.Fatalf("expected %v, got %v", c, bare)
	}
}

func TestParseHex_Invalid(t *testing.T) {
	for _, input := range []string{"", "#", "#fff", "1a1b2", "#1a1b2600", "zzzzzz", "0x1a1b26"} {
		if _, err := ParseHex(input); !errors.Is(err, ErrInvalidHex) {
			t.Fatalf("ParseHex(%q) error = %v, want ErrInvalidHex", input, err)
		}
	}
}

func TestFormatting(t *testing.T) {
	c := MustParseHex("#1a1b26")
	if got := c.Hex(); got != "1a1b26" {
		t.Fatalf("Hex() = %q", got)
	}
	if got := c.HashHex(); got != "#1a1b26" {
		t.Fatalf("HashHex() = %q", got)
	}
	if got := c.ARGB(); got != "0xff1a1b26" {
		t.Fatalf("ARGB() = %q", got)
	}
	if got := c.HashHexAlpha(0x80); got != "#1a1b2680" {
		t.Fatalf("HashHexAlpha() = %q", got)
	}
}

func TestZeroIsIdentity(t *testing.T) {
	for _, s := range samples {
		c := MustParseHex(s)
		if got := LightenByOffset(c, 0); got != c {
			t.Fatalf("LightenByOffset(%s, 0) = %s", s, got)
		}
		if got := LightenByRatio(c, 0); got != c {
			t.Fatalf("LightenByRatio(%s, 0) = %s", s, got)
		}
	}
}

func TestLightenByRatio_OneIsWhite(t *testing.T) {
	for _, s := range samples {
		if got := LightenByRatio(MustParseHex(s), 1.0); got != White {
			t.Fatalf("LightenByRatio(%s, 1) = %s, want white", s, got)
		}
	}
}

func TestLightenByRatio(t *testing.T) {
	// 0x1a=26 -> 26+229*0.25=83.25 -> 83 (0x53)
	// 0x1b=27 -> 27+228*0.25=84    -> 84 (0x54)
	// 0x26=38 -> 38+217*0.25=92.25 -> 92 (0x5c)
	got := LightenByRatio(MustParseHex("1a1b26"), 0.25)
	if got.Hex() != "53545c" {
		t.Fatalf("LightenByRatio = %s, want #53545c", got)
	}
}

func TestLightenByOffset(t *testing.T) {
	got := LightenByOffset(MustParseHex("#1a1b26"), 25)
	if got.HashHex() != "#33343f" {
		t.Fatalf("LightenByOffset = %s, want #33343f", got)
	}

	got = LightenByOffset(MustParseHex("#1a1b2e"), 25)
	if got.HashHex() != "#333447" {
		t.Fatalf("LightenByOffset = %s, want #333447", got)
	}
}

func TestLightenByOffset_Clamps(t *testing.T) {
	for _, s := range samples {
		c := MustParseHex(s)
		for _, amount := range []int{-100000, -256, -1, 1, 255, 256, 100000} {
			got := LightenByOffset(c, amount)
			if amount >= 255 && got != White {
				t.Fatalf("LightenByOffset(%s, %d) = %s, want white", s, amount, got)
			}
			if amount <= -255 && got != (Color{}) {
				t.Fatalf("LightenByOffset(%s, %d) = %s, want black", s, amount, got)
			}
		}
	}

	if got := LightenByOffset(MustParseHex("f0f0f0"), 40); got != White {
		t.Fatalf("expected clamp to white, got %s", got)
	}
	if got := LightenByOffset(MustParseHex("0a0a0a"), -40); got != (Color{}) {
		t.Fatalf("expected clamp to black, got %s", got)
	}
}

func TestBlendDoesNotMutateInput(t *testing.T) {
	c := MustParseHex("7aa2f7")
	orig := c
	_ = LightenByRatio(c, 0.5)
	_ = LightenByOffset(c, 30)
	if c != orig {
		t.Fatalf("input mutated: %v != %v", c, orig)
	}
}

func TestIsDark(t *testing.T) {
	if !MustParseHex("1a1b26").IsDark() {
		t.Fatal("expected #1a1b26 to be dark")
	}
	if MustParseHex("fafafa").IsDark() {
		t.Fatal("expected #fafafa to be light")
	}
}
