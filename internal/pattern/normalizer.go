// Package pattern extracts grouping patterns and display details from
// free-text controller log messages, and normalizes alert messages for
// content-based identity. The two normalization schemes are deliberately
// separate: log-pattern masking feeds the grouping engine, alert masking
// feeds alert identity hashing.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// rule pairs a cheap matcher with a normalizer and an optional detail
// extractor. Rules are evaluated in priority order; the first match wins.
type rule struct {
	match   func(msg string) bool
	pattern func(msg string) string
	details func(msg string) string
}

var (
	mjpgClientRe  = regexp.MustCompile(`serving client: (\S+)`)
	printCoreRe   = regexp.MustCompile(`PrintCore (\d+)`)
	extrusionRe   = regexp.MustCompile(`PrintCore (\d+) extruded ([\d.]+) mm in ([\d.]+) s, remaining length = (\d+) mm`)
	hotendQueueRe = regexp.MustCompile(`hotend (\d+)`)
	hotendWriteRe = regexp.MustCompile(`hotend index # (\d+)`)

	pidRe  = regexp.MustCompile(`\[\d+\]`)
	timeRe = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
	ipRe   = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	uuidRe = regexp.MustCompile(`[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`)
)

var rules = []rule{
	{
		// MJPG-streamer client connections share one pattern so that
		// clients connecting in the same minute collapse into a single
		// bucket; the concrete client lands in the details.
		match: func(msg string) bool {
			return strings.Contains(msg, "MJPG-streamer") && strings.Contains(msg, "serving client")
		},
		pattern: func(msg string) string {
			if mjpgClientRe.MatchString(msg) {
				return "MJPG-streamer serving client: <token>"
			}
			return "MJPG-streamer serving client"
		},
		details: func(msg string) string {
			m := mjpgClientRe.FindStringSubmatch(msg)
			if m == nil {
				return ""
			}
			return m[1]
		},
	},
	{
		match: func(msg string) bool {
			return strings.Contains(msg, "PrintCore") && strings.Contains(msg, "extruded")
		},
		pattern: func(msg string) string {
			if m := printCoreRe.FindStringSubmatch(msg); m != nil {
				return fmt.Sprintf("PrintCore %s extrusion update", m[1])
			}
			return "PrintCore extrusion update"
		},
		details: func(msg string) string {
			m := extrusionRe.FindStringSubmatch(msg)
			if m == nil {
				return ""
			}
			return fmt.Sprintf("Core %s: %smm in %ss (%smm remaining)", m[1], m[2], m[3], m[4])
		},
	},
	{
		match: func(msg string) bool { return strings.Contains(msg, "Queueing tag for hotend") },
		pattern: func(msg string) string {
			if m := hotendQueueRe.FindStringSubmatch(msg); m != nil {
				return fmt.Sprintf("NFC tag queue update for hotend %s", m[1])
			}
			return "NFC tag queue update"
		},
	},
	{
		match: func(msg string) bool { return strings.Contains(msg, "Writing tag") },
		pattern: func(msg string) string {
			if m := hotendWriteRe.FindStringSubmatch(msg); m != nil {
				return fmt.Sprintf("NFC tag write for hotend %s", m[1])
			}
			return "NFC tag write"
		},
	},
}

// Normalize derives the grouping pattern for a log message (timestamp and
// host already stripped). Special-cased message families are matched first;
// everything else gets variable substrings masked with fixed placeholders.
func Normalize(msg string) string {
	for _, r := range rules {
		if r.match(msg) {
			return r.pattern(msg)
		}
	}

	msg = pidRe.ReplaceAllString(msg, "[PID]")
	msg = timeRe.ReplaceAllString(msg, "TIME")
	msg = ipRe.ReplaceAllString(msg, "IP")
	msg = uuidRe.ReplaceAllString(msg, "UUID")
	return msg
}

// ClientToken extracts the client token from an MJPG-streamer
// serving-client message, or "" when absent.
func ClientToken(msg string) string {
	m := mjpgClientRe.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return m[1]
}

// Details extracts a display detail string for a message, or "" when the
// message family carries none.
func Details(msg string) string {
	for _, r := range rules {
		if r.match(msg) {
			if r.details == nil {
				return ""
			}
			return r.details(msg)
		}
	}
	return ""
}
