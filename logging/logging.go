// Package logging configures apex/log for the application. The terminal is
// owned by the UI, so entries only go to a file when debugging is enabled.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/text"
)

// Discard returns a logger that drops every entry
func Discard() log.Interface {
	return &log.Logger{Handler: discard.Default, Level: log.InfoLevel}
}

// New returns a text logger writing to w
func New(w io.Writer, debug bool) log.Interface {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return &log.Logger{Handler: text.New(w), Level: level}
}

// Setup opens path for appending and returns a logger writing to it.
// With debug off it returns a discarding logger and a no-op closer.
func Setup(debug bool, path string) (log.Interface, func() error, error) {
	if !debug {
		return Discard(), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return New(f, true), f.Close, nil
}
