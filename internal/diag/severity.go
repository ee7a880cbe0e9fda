package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics from informational to blocking. Only SevError
// makes a check fail.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool { return s >= min }

// ParseSeverity accepts info, warning (warn) and error, case-insensitively.
// Empty input means SevInfo.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return SevInfo, nil
	case "warning", "warn":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, fmt.Errorf("unknown severity %q (want info, warning or error)", s)
}
