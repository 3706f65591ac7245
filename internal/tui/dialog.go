package tui

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/tui/theme"
)

const progressBarWidth = 40

// progressBar renders a gradient-filled bar for a 0..100 progress value.
func progressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Floor(progress / 100 * float64(width)))
	filled = max(0, min(filled, width))

	t := theme.Current()
	var b strings.Builder
	for i := range filled {
		pos := 0.0
		if width > 1 {
			pos = float64(i) / float64(width-1)
		}
		color := theme.InterpolateColor(t.Primary, t.Tertiary, pos)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
	}
	b.WriteString(t.S().ProgressEmpty.Render(strings.Repeat("░", width-filled)))
	return b.String()
}

// formatPercent floors so the bar never reads 100% before it is full.
func formatPercent(progress float64) string {
	return fmt.Sprintf("%d%%", int(math.Floor(progress)))
}

// formatCountdown renders seconds as mm:ss.
func formatCountdown(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// renderDeployDialog draws the modal shown while a deployment attempt runs.
func renderDeployDialog(snap deploy.Snapshot, host, spin string) string {
	s := theme.Current().S()

	status := "Building your store..."
	if snap.Phase == deploy.PhaseRequesting {
		status = "Contacting the provisioning service..."
	}

	lines := []string{
		s.HeaderTitle.Render("Deploying " + host),
		"",
		spin + " " + s.Text.Render(status),
		"",
		progressBar(snap.Progress, progressBarWidth) + " " + s.Text.Render(formatPercent(snap.Progress)),
		s.Muted.Render("Estimated time remaining: " + formatCountdown(snap.TimeRemaining)),
		"",
		RenderHintBar(KeyEsc, "close"),
	}
	return s.Dialog.Render(strings.Join(lines, "\n"))
}
