// Package log provides unified logging functionality for the application
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Log levels
const (
	LevelError   = "error"
	LevelWarn    = "warn"
	LevelInfo    = "info"
	LevelVerbose = "verbose"
	LevelDebug   = "debug"
	LevelTrace   = "trace"
)

// levelRanks defines the log level hierarchy (higher number = more chatty)
var levelRanks = map[string]int{
	LevelError:   0,
	LevelWarn:    1,
	LevelInfo:    2,
	LevelVerbose: 3,
	LevelDebug:   4,
	LevelTrace:   5,
}

// Logger provides logging functionality for the application
type Logger struct {
	level      string
	timestamps bool
	mu         sync.Mutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Initialize creates the default logger with the specified level
func Initialize(level string, timestamps bool) {
	once.Do(func() {
		defaultLogger = NewLogger(level, timestamps)
	})
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		// Default to info if not initialized
		defaultLogger = NewLogger(os.Getenv("LOG_LEVEL"), true)
	})
	return defaultLogger
}

// NewLogger creates a new logger with the specified level
func NewLogger(level string, timestamps bool) *Logger {
	if level == "" {
		level = LevelInfo // Default log level
	}
	return &Logger{
		level:      strings.ToLower(level),
		timestamps: timestamps,
	}
}

// SetLevel sets the logger level
func (l *Logger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := levelRanks[strings.ToLower(level)]; ok {
		l.level = strings.ToLower(level)
	}
}

// GetLevel returns the current logger level
func (l *Logger) GetLevel() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetTimestamps enables or disables timestamp prefixes
func (l *Logger) SetTimestamps(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = enabled
}

// GetTimestampsEnabled reports whether the default logger prefixes timestamps
func GetTimestampsEnabled() bool {
	l := GetLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timestamps
}

// shouldLog checks if a message at the given level passes the logger level
func (l *Logger) shouldLog(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := levelRanks[l.level]
	if !ok {
		current = levelRanks[LevelInfo]
	}
	return levelRanks[level] <= current
}

func (l *Logger) output(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	out := os.Stdout
	if level == "ERROR" || level == "FATAL" {
		out = os.Stderr
	}
	if GetTimestampsEnabled() {
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		fmt.Fprintf(out, "%s %s %s\n", timestamp, level, message)
	} else {
		fmt.Fprintf(out, "%s %s\n", level, message)
	}
}

// Trace logs a trace message with optional formatting
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.shouldLog(LevelTrace) {
		l.output("TRACE", format, args...)
	}
}

// Debug logs a debug message with optional formatting
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.shouldLog(LevelDebug) {
		l.output("DEBUG", format, args...)
	}
}

// Verbose logs a verbose message with optional formatting
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.shouldLog(LevelVerbose) {
		l.output("VERBOSE", format, args...)
	}
}

// Info logs an info message with optional formatting
func (l *Logger) Info(format string, args ...interface{}) {
	if l.shouldLog(LevelInfo) {
		l.output("INFO", format, args...)
	}
}

// Warn logs a warning message with optional formatting
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.shouldLog(LevelWarn) {
		l.output("WARN", format, args...)
	}
}

// Error logs an error message with optional formatting
func (l *Logger) Error(format string, args ...interface{}) {
	l.output("ERROR", format, args...)
}

// Fatal logs an error message and exits the program
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.output("FATAL", format, args...)
	os.Exit(1)
}

// Helper functions that use the default logger

// Trace logs a trace message with the default logger
func Trace(format string, args ...interface{}) {
	GetLogger().Trace(format, args...)
}

// Debug logs a debug message with the default logger
func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

// Verbose logs a verbose message with the default logger
func Verbose(format string, args ...interface{}) {
	GetLogger().Verbose(format, args...)
}

// Info logs an info message with the default logger
func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

// Warn logs a warning message with the default logger
func Warn(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

// Error logs an error message with the default logger
func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

// Fatal logs an error message with the default logger and exits
func Fatal(format string, args ...interface{}) {
	GetLogger().Fatal(format, args...)
}
