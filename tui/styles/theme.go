package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme
type Theme struct {
	Name    string
	Accent  lipgloss.AdaptiveColor // title bar, section labels, slider fill
	Text    lipgloss.AdaptiveColor
	TextDim lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Focus   lipgloss.AdaptiveColor
	Upload  lipgloss.AdaptiveColor
	Submit  lipgloss.AdaptiveColor
	Clear   lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	OnColor lipgloss.AdaptiveColor // text drawn on accent and button backgrounds
}

// DefaultTheme follows the orange/green/blue/red palette of the desktop app
var DefaultTheme = Theme{
	Name:    "default",
	Accent:  lipgloss.AdaptiveColor{Light: "#FB8C00", Dark: "#FFA726"},
	Text:    lipgloss.AdaptiveColor{Light: "#1E1E1E", Dark: "#E0E0E0"},
	TextDim: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"},
	Border:  lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#4A4A4A"},
	Focus:   lipgloss.AdaptiveColor{Light: "#1976D2", Dark: "#64B5F6"},
	Upload:  lipgloss.AdaptiveColor{Light: "#4CAF50", Dark: "#66BB6A"},
	Submit:  lipgloss.AdaptiveColor{Light: "#2196F3", Dark: "#42A5F5"},
	Clear:   lipgloss.AdaptiveColor{Light: "#F44336", Dark: "#EF5350"},
	Error:   lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#EF5350"},
	OnColor: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"},
}

// DraculaTheme is a dark palette
var DraculaTheme = Theme{
	Name:    "dracula",
	Accent:  lipgloss.AdaptiveColor{Light: "#FFB86C", Dark: "#FFB86C"},
	Text:    lipgloss.AdaptiveColor{Light: "#F8F8F2", Dark: "#F8F8F2"},
	TextDim: lipgloss.AdaptiveColor{Light: "#6272A4", Dark: "#6272A4"},
	Border:  lipgloss.AdaptiveColor{Light: "#44475A", Dark: "#44475A"},
	Focus:   lipgloss.AdaptiveColor{Light: "#BD93F9", Dark: "#BD93F9"},
	Upload:  lipgloss.AdaptiveColor{Light: "#50FA7B", Dark: "#50FA7B"},
	Submit:  lipgloss.AdaptiveColor{Light: "#8BE9FD", Dark: "#8BE9FD"},
	Clear:   lipgloss.AdaptiveColor{Light: "#FF5555", Dark: "#FF5555"},
	Error:   lipgloss.AdaptiveColor{Light: "#FF5555", Dark: "#FF5555"},
	OnColor: lipgloss.AdaptiveColor{Light: "#282A36", Dark: "#282A36"},
}

// NordTheme is a muted blue palette
var NordTheme = Theme{
	Name:    "nord",
	Accent:  lipgloss.AdaptiveColor{Light: "#D08770", Dark: "#D08770"},
	Text:    lipgloss.AdaptiveColor{Light: "#2E3440", Dark: "#D8DEE9"},
	TextDim: lipgloss.AdaptiveColor{Light: "#4C566A", Dark: "#4C566A"},
	Border:  lipgloss.AdaptiveColor{Light: "#4C566A", Dark: "#4C566A"},
	Focus:   lipgloss.AdaptiveColor{Light: "#5E81AC", Dark: "#88C0D0"},
	Upload:  lipgloss.AdaptiveColor{Light: "#A3BE8C", Dark: "#A3BE8C"},
	Submit:  lipgloss.AdaptiveColor{Light: "#5E81AC", Dark: "#81A1C1"},
	Clear:   lipgloss.AdaptiveColor{Light: "#BF616A", Dark: "#BF616A"},
	Error:   lipgloss.AdaptiveColor{Light: "#BF616A", Dark: "#BF616A"},
	OnColor: lipgloss.AdaptiveColor{Light: "#ECEFF4", Dark: "#2E3440"},
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "dracula":
		return DraculaTheme
	case "nord":
		return NordTheme
	default:
		return DefaultTheme
	}
}
