// Package logger provides levelled logging for ghscan.
//
// Warnings and errors are always printed to stderr: a low rate-limit budget,
// a run that could not be recorded and GraphQL errors in a response are
// things the user needs to see. Debug and info messages, which trace
// pagination and filtering, only appear with --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the severity of a message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

var (
	mu        sync.RWMutex
	threshold           = LevelWarn
	output    io.Writer = os.Stderr
)

// SetVerbose lowers the threshold to debug, or restores the default (warn).
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		threshold = LevelDebug
	} else {
		threshold = LevelWarn
	}
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// Enabled reports whether messages at l are printed.
func Enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= threshold
}

// SetOutput sets the writer for all messages. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < threshold {
		return
	}
	fmt.Fprintf(output, "["+l.String()+"] "+format+"\n", args...)
}

// Debug traces requests and pagination.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info reports progress such as the resolved total.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn reports a problem that does not stop the command.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error reports diagnostics such as GraphQL errors and failing nodes.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a header separating phases of a verbose run.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if threshold <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
