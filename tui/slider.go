package tui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/nachoal/visionari-go/controller"
	"github.com/nachoal/visionari-go/tui/styles"
)

// Slider renders one sampling parameter as a bar. The value itself lives in
// the controller's session; the slider only knows its range and step.
type Slider struct {
	Label    string
	Min      float64
	Max      float64
	Step     float64
	BigStep  float64
	Decimals int
	LogScale bool // bar position on a log scale, for wide integer ranges

	bar progress.Model
}

func newSlider(label string, min, max, step, bigStep float64, decimals int, theme styles.Theme) Slider {
	return Slider{
		Label:    label,
		Min:      min,
		Max:      max,
		Step:     step,
		BigStep:  bigStep,
		Decimals: decimals,
		bar: progress.New(
			progress.WithSolidFill(theme.Accent.Dark),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// Adjust moves v by n steps (negative n moves down)
func (s Slider) Adjust(v float64, n int, big bool) float64 {
	step := s.Step
	if big {
		step = s.BigStep
	}
	v += float64(n) * step
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Ratio returns the bar fill for v in [0,1]
func (s Slider) Ratio(v float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	if s.LogScale && s.Min > 0 {
		return math.Log(v/s.Min) / math.Log(s.Max/s.Min)
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// Format renders v with the slider's precision
func (s Slider) Format(v float64) string {
	return fmt.Sprintf("%.*f", s.Decimals, v)
}

// View renders the label, the bar and the value
func (s Slider) View(v float64, focused bool, st *styles.Styles, width int) string {
	s.bar.Width = max(10, width-st.Label.GetWidth()-st.SliderValue.GetWidth()-4)

	label := st.Label.Render(s.Label)
	value := st.SliderValue.Render(s.Format(v))
	if focused {
		label = st.Label.Foreground(st.Theme.Focus).Render("› " + s.Label)
		value = st.SliderSelected.Render(s.Format(v))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, label, s.bar.ViewAs(s.Ratio(v)), value)
}

func samplingSliders(theme styles.Theme) [3]Slider {
	maxTokens := newSlider("Max Tokens", controller.MinMaxTokens, controller.MaxMaxTokens, 1, 256, 0, theme)
	maxTokens.LogScale = true
	return [3]Slider{
		maxTokens,
		newSlider("Temperature", controller.MinTemperature, controller.MaxTemperature, controller.SliderStep, 10*controller.SliderStep, 2, theme),
		newSlider("Top P", controller.MinTopP, controller.MaxTopP, controller.SliderStep, 10*controller.SliderStep, 2, theme),
	}
}
