// Package log provides the application logger: a small Logger interface with
// a golog-backed default implementation and package-level helpers, so
// components can log without threading logger objects around.
package log

import (
	"io"

	"github.com/kataras/golog"
)

// Logger is the logging contract used across the application.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// GologLogger implements Logger using kataras/golog.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger creates a new logger over an existing golog.Logger.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger}
}

// Debug logs debug messages.
func (l *GologLogger) Debug(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Info logs informational messages.
func (l *GologLogger) Info(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warn logs warning messages.
func (l *GologLogger) Warn(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Error logs error messages.
func (l *GologLogger) Error(format string, v ...any) {
	l.logger.Errorf(format, v...)
}

// SetLevel sets the level of the underlying golog logger
// ("debug", "info", "warn", "error", "disable").
func (l *GologLogger) SetLevel(level string) {
	l.logger.SetLevel(level)
}

// SetOutput redirects the underlying golog logger's output.
func (l *GologLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// NoOpLogger is a logger that doesn't log anything.
type NoOpLogger struct{}

// Debug does nothing.
func (NoOpLogger) Debug(format string, v ...any) {}

// Info does nothing.
func (NoOpLogger) Info(format string, v ...any) {}

// Warn does nothing.
func (NoOpLogger) Warn(format string, v ...any) {}

// Error does nothing.
func (NoOpLogger) Error(format string, v ...any) {}

// Package-level logger, golog-backed by default.
var defaultLogger Logger = NewGologLogger(golog.New())

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(logger Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the current package-level logger.
func GetDefaultLogger() Logger {
	return defaultLogger
}

// SetLevel sets the level of the package-level logger when it is golog-backed.
func SetLevel(level string) {
	if l, ok := defaultLogger.(*GologLogger); ok {
		l.SetLevel(level)
	}
}

// Debug logs a debug message using the package-level logger.
func Debug(format string, v ...any) {
	defaultLogger.Debug(format, v...)
}

// Info logs an informational message using the package-level logger.
func Info(format string, v ...any) {
	defaultLogger.Info(format, v...)
}

// Warn logs a warning message using the package-level logger.
func Warn(format string, v ...any) {
	defaultLogger.Warn(format, v...)
}

// Error logs an error message using the package-level logger.
func Error(format string, v ...any) {
	defaultLogger.Error(format, v...)
}
