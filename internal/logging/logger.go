// Package logging provides the leveled logger injected into the engine and
// the run driver.
package logging

import (
	"io"
	"log"
	"strings"
)

// Logger is the logging surface every package depends on.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name case-insensitively. Unknown names map to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Std writes leveled lines through a standard library logger.
type Std struct {
	level Level
	out   *log.Logger
}

func New(w io.Writer, level string) *Std {
	return &Std{
		level: ParseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

func (l *Std) Level() Level { return l.level }

func (l *Std) shouldLog(level Level) bool {
	return level >= l.level
}

func (l *Std) Debugf(format string, v ...any) {
	if l.shouldLog(LevelDebug) {
		l.out.Printf("[DEBUG] "+format, v...)
	}
}

func (l *Std) Infof(format string, v ...any) {
	if l.shouldLog(LevelInfo) {
		l.out.Printf("[INFO] "+format, v...)
	}
}

func (l *Std) Warnf(format string, v ...any) {
	if l.shouldLog(LevelWarn) {
		l.out.Printf("[WARN] "+format, v...)
	}
}

func (l *Std) Errorf(format string, v ...any) {
	if l.shouldLog(LevelError) {
		l.out.Printf("[ERROR] "+format, v...)
	}
}

// Nop discards everything. Tests and library callers that do not care about
// progress use it.
type Nop struct{}

func (Nop) Debugf(format string, v ...any) {}
func (Nop) Infof(format string, v ...any)  {}
func (Nop) Warnf(format string, v ...any)  {}
func (Nop) Errorf(format string, v ...any) {}
