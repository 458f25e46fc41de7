package controller

import "math"

// Sampling parameter ranges
const (
	MinMaxTokens   = 1
	MaxMaxTokens   = 1000000
	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinTopP        = 0.01 // top_p is exclusive of zero; one slider step is the floor
	MaxTopP        = 1.0
	SliderStep     = 0.01
)

// Placeholder is the prompt shown in the query field before anything is typed
const Placeholder = "Enter your Image Query here"

// Sampling holds the generation parameters sent with each request
type Sampling struct {
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
}

// DefaultSampling returns the parameters the sliders start at
func DefaultSampling() Sampling {
	return Sampling{MaxTokens: 512, Temperature: 0.7, TopP: 0.9}
}

// ClassicSampling returns the fixed parameters used before the sliders existed
func ClassicSampling() Sampling {
	return Sampling{MaxTokens: 1024, Temperature: 0.5, TopP: 1}
}

// SamplingPreset resolves a preset name; unknown names give the defaults
func SamplingPreset(name string) Sampling {
	if name == "classic" {
		return ClassicSampling()
	}
	return DefaultSampling()
}

// Clamped returns s with every field forced into its range
func (s Sampling) Clamped() Sampling {
	return Sampling{
		MaxTokens:   clampInt(s.MaxTokens, MinMaxTokens, MaxMaxTokens),
		Temperature: clampStep(s.Temperature, MinTemperature, MaxTemperature),
		TopP:        clampStep(s.TopP, MinTopP, MaxTopP),
	}
}

// Session is the mutable state of one user session. Zero value is empty.
type Session struct {
	ImagePath string
	Query     string
	Sampling  Sampling
}

// HasImage reports whether an image has been selected
func (s Session) HasImage() bool {
	return s.ImagePath != ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampStep clamps v and snaps it to the slider's two-decimal grid
func clampStep(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	v = math.Round(v*100) / 100
	return math.Max(lo, math.Min(hi, v))
}
