// Package logger offers a prefixed stdlib logger for bootstrap code that runs
// before the structured slog logger is configured.
package logger

import (
	"io"
	"log"
	"os"
)

// New returns a stderr logger whose messages are prefixed with the component name.
func New(component string) *log.Logger {
	return NewWithWriter(os.Stderr, component)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, component string) *log.Logger {
	return log.New(w, component+": ", log.LstdFlags|log.Lmsgprefix)
}
