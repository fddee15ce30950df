package pattern

import (
	"regexp"
	"strings"
)

// Noisy alert families whose wording varies per occurrence collapse to a
// fixed phrase before any generic masking.
var literalPhrases = []struct {
	contains string
	replace  string
}{
	{"Build has completed and is waiting for cleanup", "Build has completed and is waiting for cleanup"},
	{"Next update check scheduled for", "Next update check scheduled"},
	{"Stardust service connection issues", "Stardust service connection issues"},
}

var (
	alertTimeRe = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`)
	alertDateRe = regexp.MustCompile(`\b[A-Z][a-z]{2} \d{2}\b`)
	alertUUIDRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	alertHexRe  = regexp.MustCompile(`0x[0-9a-f]+`)
	alertNumRe  = regexp.MustCompile(`\d+(\.\d+)?%?`)
)

// NormalizeAlert masks the variable parts of an alert message so that
// semantically identical alerts hash to the same identity. This scheme is
// distinct from the log-pattern masking in Normalize.
//
// UUID and hex tokens are masked before bare numbers; masking numbers first
// would shred UUIDs into unstable fragments and break identity stability.
func NormalizeAlert(msg string) string {
	for _, p := range literalPhrases {
		if strings.Contains(msg, p.contains) {
			return p.replace
		}
	}

	msg = alertTimeRe.ReplaceAllString(msg, "TIME")
	msg = alertDateRe.ReplaceAllString(msg, "DATE")
	msg = alertUUIDRe.ReplaceAllString(msg, "UUID")
	msg = alertHexRe.ReplaceAllString(msg, "HEX")
	msg = alertNumRe.ReplaceAllStringFunc(msg, func(m string) string {
		if strings.HasSuffix(m, "%") {
			return m // keep percentages
		}
		return "NUM"
	})
	return msg
}
