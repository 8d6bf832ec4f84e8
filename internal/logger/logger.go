// Package logger provides leveled logging for LectureLens.
// Warnings are always printed to stderr. The --verbose flag adds info and
// debug lines that show ingest, embedding and retrieval progress.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level controls which messages are written.
type Level int

const (
	// LevelSilent suppresses all output.
	LevelSilent Level = iota
	// LevelWarn writes warnings only. This is the default.
	LevelWarn
	// LevelInfo adds informational messages.
	LevelInfo
	// LevelDebug writes everything.
	LevelDebug
)

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
	now              = time.Now
)

// SetLevel sets the minimum level written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose switches between LevelDebug and LevelWarn.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if debug output is enabled.
func IsVerbose() bool {
	return GetLevel() >= LevelDebug
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(min Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if level >= min {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message at LevelDebug.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Section prints a section header at LevelInfo.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level >= LevelInfo {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints a message at LevelInfo.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn prints a message at LevelWarn.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Elapsed logs how long a stage took when the returned func is called.
//
//	defer logger.Elapsed("embed")()
func Elapsed(stage string) func() {
	start := now()
	return func() {
		Info("%s took %s", stage, now().Sub(start).Round(time.Millisecond))
	}
}
