package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatppuccinMocha_Palette(t *testing.T) {
	th := NewCatppuccinMocha()
	require.Equal(t, "catppuccin-mocha", th.Name)
	require.True(t, th.IsDark)
	for name, color := range map[string]string{
		"Primary":   th.Primary,
		"Secondary": th.Secondary,
		"BgBase":    th.BgBase,
		"FgBase":    th.FgBase,
		"Success":   th.Success,
		"Error":     th.Error,
	} {
		require.Regexp(t, `^#[0-9a-f]{6}$`, color, name)
	}
}

func TestCurrent_ReturnsSameTheme(t *testing.T) {
	require.Same(t, Current(), Current())
	require.Same(t, Current().S(), Current().S())
}

func TestInterpolateColor(t *testing.T) {
	require.Equal(t, "#000000", InterpolateColor("#000000", "#ffffff", 0))
	require.Equal(t, "#ffffff", InterpolateColor("#000000", "#ffffff", 1))
	require.Equal(t, "#7f7f7f", InterpolateColor("#000000", "#ffffff", 0.5))
	// Out-of-range positions clamp to the ends.
	require.Equal(t, "#ffffff", InterpolateColor("#000000", "#ffffff", 3))
}

func TestParseHexColor(t *testing.T) {
	r, g, b := ParseHexColor("#cba6f7")
	require.Equal(t, []uint8{0xcb, 0xa6, 0xf7}, []uint8{r, g, b})

	r, g, b = ParseHexColor("bogus")
	require.Equal(t, []uint8{0, 0, 0}, []uint8{r, g, b})
}

func TestApplyGradient_KeepsText(t *testing.T) {
	require.Empty(t, ApplyGradient("", "#000000", "#ffffff"))
	out := ApplyGradient("a b", "#000000", "#ffffff")
	require.Contains(t, out, "a")
	require.Contains(t, out, " ")
	require.Contains(t, out, "b")
}
