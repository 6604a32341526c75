// Package logging adapts github.com/baditaflorin/l to ports.Logger.
package logging

import (
	"io"
	"os"

	"github.com/baditaflorin/l"

	"github.com/ahrav/go-as1100/internal/ports"
)

var _ ports.Logger = (*StdLogger)(nil)

// StdLogger adapts the l.Logger to the ports.Logger interface.
type StdLogger struct {
	logger l.Logger
}

// Options selects where and how the logger writes.
type Options struct {
	// Output defaults to os.Stderr so that command output on stdout stays
	// machine readable.
	Output io.Writer
	// JSON switches from text to JSON lines.
	JSON bool
}

// NewStdLogger creates a synchronous logger writing to opts.Output.
func NewStdLogger(opts Options) (ports.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return NewCustomStdLogger(l.Config{
		Output:     out,
		JsonFormat: opts.JSON,
		AsyncWrite: false,
		AddSource:  false,
	})
}

// NewCustomStdLogger creates a new standard logger with custom configuration.
func NewCustomStdLogger(config l.Config) (ports.Logger, error) {
	logger, err := l.NewStandardFactory().CreateLogger(config)
	if err != nil {
		return nil, err
	}

	return &StdLogger{logger: logger}, nil
}

// FromExisting creates a new StdLogger from an existing l.Logger.
func FromExisting(logger l.Logger) ports.Logger {
	return &StdLogger{logger: logger}
}

// Debug logs a debug message.
func (s *StdLogger) Debug(msg string, keysAndValues ...any) {
	s.logger.Debug(msg, keysAndValues...)
}

// Info logs an info message.
func (s *StdLogger) Info(msg string, keysAndValues ...any) {
	s.logger.Info(msg, keysAndValues...)
}

// Warn logs a warning message.
func (s *StdLogger) Warn(msg string, keysAndValues ...any) {
	s.logger.Warn(msg, keysAndValues...)
}

// Error logs an error message.
func (s *StdLogger) Error(msg string, keysAndValues ...any) {
	s.logger.Error(msg, keysAndValues...)
}

// Close flushes and closes the logger.
func (s *StdLogger) Close() error {
	return s.logger.Close()
}
