package formatter

import (
	"encoding/json"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/grouping"
)

// JSONFormatter renders entries and alerts as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatEntries(entries []grouping.Entry) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}

func (f *JSONFormatter) FormatAlerts(alerts []alerting.Alert) ([]byte, error) {
	return json.MarshalIndent(alerts, "", "  ")
}
