// file: internal/logging/level.go
// version: 1.0.0
// guid: 6f4a2d81-3c9b-4e57-a0d6-b8e1f3c7925d

// Package logging configures the process-wide standard logger. Callers keep
// writing log.Printf("[LEVEL] ...") lines; the writer installed here drops
// lines below the configured level.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a config value to a LogLevel. Empty means info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// prefixes lists the tags each level is recognized by. Untagged lines are info.
var prefixes = []struct {
	tag   string
	level LogLevel
}{
	{"[DEBUG]", DebugLevel},
	{"[SERVICE-DEBUG]", DebugLevel},
	{"[INFO]", InfoLevel},
	{"[WARN]", WarnLevel},
	{"[ERROR]", ErrorLevel},
	{"[SERVICE-ERROR]", ErrorLevel},
}

// LineLevel reports the level of a formatted log line.
func LineLevel(line []byte) LogLevel {
	for _, p := range prefixes {
		if bytes.Contains(line, []byte(p.tag)) {
			return p.level
		}
	}
	return InfoLevel
}

// LevelWriter forwards log lines at or above its minimum level.
type LevelWriter struct {
	mu  sync.Mutex
	out io.Writer
	min LogLevel
}

// NewLevelWriter wraps out.
func NewLevelWriter(out io.Writer, min LogLevel) *LevelWriter {
	return &LevelWriter{out: out, min: min}
}

func (w *LevelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if LineLevel(p) < w.min {
		return len(p), nil
	}
	return w.out.Write(p)
}

// SetLevel changes the minimum level, e.g. after a config reload.
func (w *LevelWriter) SetLevel(min LogLevel) {
	w.mu.Lock()
	w.min = min
	w.mu.Unlock()
}

// Level returns the current minimum level.
func (w *LevelWriter) Level() LogLevel {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.min
}

var (
	installedMu sync.Mutex
	installed   *LevelWriter
)

// Setup installs a LevelWriter on the standard logger. Calling it again only
// adjusts the level.
func Setup(out io.Writer, level string) (*LevelWriter, error) {
	lvl, err := ParseLevel(level)
	installedMu.Lock()
	defer installedMu.Unlock()
	if installed == nil || installed.out != out {
		installed = NewLevelWriter(out, lvl)
		log.SetOutput(installed)
	} else {
		installed.SetLevel(lvl)
	}
	return installed, err
}
