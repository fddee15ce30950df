// Package formatter renders log entries and alerts for CLI output.
package formatter

import (
	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/grouping"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatEntries(entries []grouping.Entry) ([]byte, error)
	FormatAlerts(alerts []alerting.Alert) ([]byte, error)
}

// New returns the formatter for the requested format, defaulting to text.
func New(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}
