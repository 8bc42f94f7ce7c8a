// =============================================================================
// Bulk CM Parser - Logging
// =============================================================================
//
// Level-filtered console logger behind the Logger interface.
//
// =============================================================================

package bulkcm

import (
	"fmt"
	"io"
	"strings"
)

// Logger is the logging interface used by the session and the sinks.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(level string) logLevel {
	switch strings.ToLower(level) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// ConsoleLogger prints "[LEVEL] message" lines at or above a threshold.
type ConsoleLogger struct {
	out   io.Writer
	level logLevel
}

// NewConsoleLogger creates a logger writing to out. level is one of
// "debug", "info", "warn", "error"; anything else means "info".
func NewConsoleLogger(out io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{out: out, level: parseLevel(level)}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, "DEBUG", msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, "INFO", msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, "WARN", msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log(levelError, "ERROR", msg, args) }

func (l *ConsoleLogger) log(level logLevel, tag, msg string, args []interface{}) {
	if level < l.level {
		return
	}
	fmt.Fprintf(l.out, "["+tag+"] "+msg+"\n", args...)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
