package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle  lipgloss.Style
	Subtitle     lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Selected     lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Link         lipgloss.Style

	ModalContainer lipgloss.Style
	Dialog         lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	ProgressEmpty lipgloss.Style
}
