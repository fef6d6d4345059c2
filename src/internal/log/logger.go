package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	mu          sync.Mutex
	minLevel    = levelInfo
	disableLogs = false
	forceStdErr = false
	stdout      io.Writer = os.Stdout
	stderr      io.Writer = os.Stderr
	logPrefixes = map[int]string{
		levelDebug: "\033[37m[DBG]\033[0m", // White
		levelInfo:  "\033[36m[INF]\033[0m", // Cyan
		levelWarn:  "\033[33m[WRN]\033[0m", // Yellow
		levelError: "\033[31m[ERR]\033[0m", // Red
	}
	levelNames = map[string]int{
		"debug":   levelDebug,
		"info":    levelInfo,
		"warn":    levelWarn,
		"warning": levelWarn,
		"error":   levelError,
	}
)

// SetVerbose sets the logging verbosity. If true, all log levels are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		minLevel = levelDebug
	} else if minLevel == levelDebug {
		minLevel = levelInfo
	}
}

// IsVerbose returns true if debug messages are displayed.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return minLevel == levelDebug
}

// SetLevel sets the minimum displayed level by name (debug, info, warn, error).
func SetLevel(name string) error {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}
	mu.Lock()
	minLevel = level
	mu.Unlock()
	return nil
}

// SetForceStdErr sends every level to the error stream. Used by commands whose
// stdout is machine-readable.
func SetForceStdErr(v bool) {
	mu.Lock()
	forceStdErr = v
	mu.Unlock()
}

// SetOutput redirects the regular and error streams.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	stdout, stderr = out, errOut
	mu.Unlock()
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	disableLogs = true
	mu.Unlock()
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return disableLogs
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	logMessage(levelDebug, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logMessage(levelInfo, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logMessage(levelWarn, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logMessage(levelError, format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	logMessage(levelError, format, args...)
	os.Exit(1)
}

func logMessage(level int, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if disableLogs || level < minLevel {
		return
	}
	output := logPrefixes[level] + " " + fmt.Sprintf(format, args...) + "\n"

	if forceStdErr || level == levelError {
		_, _ = io.WriteString(stderr, output)
	} else {
		_, _ = io.WriteString(stdout, output)
	}
}
