package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelError              // only dumped on failure
	LevelPhase              // driver boundaries
	LevelPass               // driver + passes
	LevelDebug              // everything including per-function events
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelPass:
		return "pass"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "pass", "detail":
		return LevelPass, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|pass|debug)", s)
	}
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff, LevelError:
		return false
	case LevelPhase:
		return scope <= ScopeDriver
	case LevelPass:
		return scope <= ScopePass
	case LevelDebug:
		return true
	}
	return false
}
