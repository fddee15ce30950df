package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/common"
	"github.com/ultiview/printwatch/internal/grouping"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
)

// TextFormatter renders entries and alerts as styled terminal lines.
type TextFormatter struct{}

func (f *TextFormatter) FormatEntries(entries []grouping.Entry) ([]byte, error) {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(severityStyle(e.Type).Render(strings.ToUpper(string(e.Type))))
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render(e.Timestamp))
		b.WriteString(" ")
		b.WriteString(e.Message)
		if e.Occurrences > 1 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" (x%d)", e.Occurrences)))
		}
		if e.Details != "" {
			b.WriteString("\n    ")
			b.WriteString(mutedStyle.Render(e.Details))
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

func (f *TextFormatter) FormatAlerts(alerts []alerting.Alert) ([]byte, error) {
	var b strings.Builder
	for _, a := range alerts {
		b.WriteString(severityStyle(a.Type).Render(strings.ToUpper(string(a.Type))))
		b.WriteString(" ")
		b.WriteString(a.Message)
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (x%d, since %s)", a.Occurrences, a.CreatedAt.Format(time.RFC3339))))
		if a.Resolved && a.ResolvedAt != nil {
			b.WriteString(mutedStyle.Render(" resolved " + a.ResolvedAt.Format(time.RFC3339)))
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

func severityStyle(s common.Severity) lipgloss.Style {
	switch s {
	case common.SeverityError:
		return errorStyle
	case common.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}
