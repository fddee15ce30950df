package common

import "strings"

// Severity classifies a log entry or alert for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity parses a string to Severity, defaulting to info.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "warning", "warn":
		return SeverityWarning
	case "error", "err", "fatal":
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Classify derives the severity of a base log message.
//
// The token matching is intentionally naive and matches the controller's
// historical behavior: a case-sensitive "ERR" or case-insensitive "ERROR"
// makes the message an error, a case-sensitive "WAR" makes it a warning.
// Words like "SOFTWARE" therefore classify as warnings; callers relying on
// exact semantics should not "fix" this without a product decision.
func Classify(message string) Severity {
	if strings.Contains(message, "ERR") || strings.Contains(strings.ToUpper(message), "ERROR") {
		return SeverityError
	}
	if strings.Contains(message, "WAR") {
		return SeverityWarning
	}
	return SeverityInfo
}
