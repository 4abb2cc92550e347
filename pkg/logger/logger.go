package logger

import (
	"context"
	"log/slog"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels. A nil
// LogFunc discards everything, so components can hold one without checks.
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

// Debug logs a message at debug level
func (f LogFunc) Debug(msg string, keyvals ...interface{}) {
	if f != nil {
		f(DebugLevel, msg, keyvals...)
	}
}

// Info logs a message at info level
func (f LogFunc) Info(msg string, keyvals ...interface{}) {
	if f != nil {
		f(InfoLevel, msg, keyvals...)
	}
}

// Error logs a message at error level
func (f LogFunc) Error(msg string, keyvals ...interface{}) {
	if f != nil {
		f(ErrorLevel, msg, keyvals...)
	}
}

// With returns a LogFunc that appends keyvals to every record
func (f LogFunc) With(keyvals ...interface{}) LogFunc {
	if f == nil || len(keyvals) == 0 {
		return f
	}
	return func(level LogLevel, msg string, kv ...interface{}) {
		all := make([]interface{}, 0, len(keyvals)+len(kv))
		all = append(all, keyvals...)
		all = append(all, kv...)
		f(level, msg, all...)
	}
}

// Slog adapts a structured logger
func Slog(l *slog.Logger) LogFunc {
	if l == nil {
		return nil
	}
	return func(level LogLevel, msg string, keyvals ...interface{}) {
		l.Log(context.Background(), slogLevel(level), msg, keyvals...)
	}
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
