// Package style holds the colors and glyphs guard uses on the terminal.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6") // links
	Slate  = lipgloss.Color("#667085") // secondary text
	Blue   = lipgloss.Color("#3B82F6") // low severity
	Green  = lipgloss.Color("#22A06B") // success
	Red    = lipgloss.Color("#D93025") // errors, high severity
	Yellow = lipgloss.Color("#F59E0B") // warnings, medium severity
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)
