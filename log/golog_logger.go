package log

import (
	"github.com/kataras/golog"
)

// GologLogger adapts a kataras/golog logger to the Logger interface.
// Level filtering is delegated to golog itself.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger wraps an existing golog.Logger.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger}
}

// NewGologLoggerWithLevel wraps golog's default logger set to the given
// level.
func NewGologLoggerWithLevel(level LogLevel) *GologLogger {
	l := golog.Default
	l.SetLevel(gologLevel(level))
	return &GologLogger{logger: l}
}

// Debug logs a formatted debug message.
func (l *GologLogger) Debug(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Info logs a formatted informational message.
func (l *GologLogger) Info(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warn logs a formatted warning message.
func (l *GologLogger) Warn(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Error logs a formatted error message.
func (l *GologLogger) Error(format string, v ...any) {
	l.logger.Errorf(format, v...)
}

// SetLevel sets the underlying golog level.
func (l *GologLogger) SetLevel(level LogLevel) {
	l.logger.SetLevel(gologLevel(level))
}

func gologLevel(level LogLevel) string {
	switch level {
	case LogLevelDebug:
		return "debug"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "disable"
	default:
		return "info"
	}
}
