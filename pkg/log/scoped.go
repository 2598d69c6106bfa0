// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"fmt"
	"time"
)

// ScopedLogger provides logging with component-specific log levels
type ScopedLogger struct {
	prefix   string
	logLevel string
}

// NewScopedLogger creates a new scoped logger with a component-specific log level
func NewScopedLogger(prefix, logLevel string) *ScopedLogger {
	return &ScopedLogger{
		prefix:   prefix,
		logLevel: logLevel,
	}
}

// shouldLog checks if the message should be logged based on the component log level
func (s *ScopedLogger) shouldLog(level string) bool {
	if s.logLevel == "" {
		return GetLogger().shouldLog(level) // No override, global level decides
	}

	componentLevel, componentExists := levelRanks[s.logLevel]
	messageLevel, messageExists := levelRanks[level]

	if !componentExists || !messageExists {
		return true // Default to allowing if levels not found
	}

	return messageLevel <= componentLevel
}

// formatScopedMessage formats a message with proper timestamp if enabled
func (s *ScopedLogger) formatScopedMessage(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Use the same timestamp setting as the global logger
	if GetTimestampsEnabled() {
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		fmt.Printf("%s   *%s %s %s\n", timestamp, level, s.prefix, message)
	} else {
		fmt.Printf("  *%s %s %s\n", level, s.prefix, message)
	}
}

// Scoped logging methods
func (s *ScopedLogger) Trace(format string, args ...interface{}) {
	if s.shouldLog(LevelTrace) {
		s.formatScopedMessage("TRACE", format, args...)
	}
}

func (s *ScopedLogger) Debug(format string, args ...interface{}) {
	if s.shouldLog(LevelDebug) {
		s.formatScopedMessage("DEBUG", format, args...)
	}
}

func (s *ScopedLogger) Verbose(format string, args ...interface{}) {
	if s.shouldLog(LevelVerbose) {
		// Only TRACE and DEBUG bypass global filtering
		Verbose(s.prefix+" "+format, args...)
	}
}

func (s *ScopedLogger) Info(format string, args ...interface{}) {
	if s.shouldLog(LevelInfo) {
		Info(s.prefix+" "+format, args...)
	}
}

func (s *ScopedLogger) Warn(format string, args ...interface{}) {
	if s.shouldLog(LevelWarn) {
		Warn(s.prefix+" "+format, args...)
	}
}

func (s *ScopedLogger) Error(format string, args ...interface{}) {
	if s.shouldLog(LevelError) {
		Error(s.prefix+" "+format, args...)
	}
}
