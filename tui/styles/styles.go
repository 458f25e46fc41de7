package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all the styles for the application
type Styles struct {
	Theme Theme

	// Layout
	Title   lipgloss.Style
	Label   lipgloss.Style
	Section lipgloss.Style
	Help    lipgloss.Style
	Dim     lipgloss.Style

	// Panels
	Preview        lipgloss.Style
	Output         lipgloss.Style
	OutputFocused  lipgloss.Style
	Picker         lipgloss.Style
	Field          lipgloss.Style
	FieldFocused   lipgloss.Style
	SliderValue    lipgloss.Style
	SliderSelected lipgloss.Style

	// Buttons
	UploadButton lipgloss.Style
	SubmitButton lipgloss.Style
	ClearButton  lipgloss.Style
	Disabled     lipgloss.Style

	// Notification
	Modal      lipgloss.Style
	ModalTitle lipgloss.Style
	ErrorTitle lipgloss.Style
}

// NewStyles creates a new styles instance with the given theme
func NewStyles(theme Theme) *Styles {
	s := &Styles{
		Theme: theme,
	}

	s.Title = lipgloss.NewStyle().
		Background(theme.Accent).
		Foreground(theme.OnColor).
		Bold(true).
		Padding(0, 2).
		Align(lipgloss.Center)

	s.Label = lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(14)

	s.Section = lipgloss.NewStyle().
		Background(theme.Accent).
		Foreground(theme.OnColor).
		Bold(true).
		Padding(0, 1)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.Dim = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.Preview = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Align(lipgloss.Center, lipgloss.Center)

	s.Output = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	s.OutputFocused = s.Output.
		BorderForeground(theme.Focus)

	s.Picker = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Focus).
		Padding(0, 1)

	s.Field = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(theme.Border).
		PaddingLeft(1)

	s.FieldFocused = s.Field.
		BorderForeground(theme.Focus)

	s.SliderValue = lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(9).
		Align(lipgloss.Right)

	s.SliderSelected = s.SliderValue.
		Foreground(theme.Focus).
		Bold(true)

	button := lipgloss.NewStyle().
		Foreground(theme.OnColor).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	s.UploadButton = button.Background(theme.Upload)
	s.SubmitButton = button.Background(theme.Submit)
	s.ClearButton = button.Background(theme.Clear)
	s.Disabled = button.Background(theme.Border).Foreground(theme.TextDim)

	s.Modal = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 3).
		Width(56)

	s.ModalTitle = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	s.ErrorTitle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	return s
}

// Focused wraps a button style with an underline marker when it has focus
func Focused(style lipgloss.Style, focused bool) lipgloss.Style {
	if focused {
		return style.Underline(true).Reverse(true)
	}
	return style
}
