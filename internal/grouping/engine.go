// Package grouping turns a raw controller log stream into deduplicated,
// display-ready entries. Lines sharing a message pattern within the same
// calendar minute collapse into one bucket; buckets and the rolling entry
// buffer are bounded and evicted periodically.
package grouping

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ultiview/printwatch/internal/clock"
	"github.com/ultiview/printwatch/internal/common"
	"github.com/ultiview/printwatch/internal/pattern"
)

// Entry is one display-ready log entry emitted by ProcessBatch.
type Entry struct {
	Timestamp   string          `json:"timestamp"`
	Message     string          `json:"message"`
	Type        common.Severity `json:"type"`
	Occurrences int             `json:"occurrences"`
	Raw         string          `json:"raw"`
	Details     string          `json:"details,omitempty"`

	parsedTime time.Time
}

// ParsedTime returns the calendar timestamp derived from the raw line.
func (e Entry) ParsedTime() time.Time { return e.parsedTime }

// group is one bucket of raw lines sharing (pattern, minute).
type group struct {
	pattern    string
	count      int
	firstTS    string
	lastTS     string
	raw        []string
	parsedTime time.Time
}

// Outer line grammar: "<Mon> <Day> <HH:MM:SS> <host> <rest>".
var lineRe = regexp.MustCompile(`^((\w{3}) +(\d{1,2}) (\d{2}:\d{2}:\d{2})) (\S+) (.+)$`)

var (
	clientPortRe = regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}):\d+$`)
	fetchURLRe   = regexp.MustCompile(`Failed to fetch .+ at (http\S+)`)
)

const (
	defaultBufferSize = 1000
	defaultGroupAge   = time.Hour
	maxSeenMessages   = 10000
	maxGroups         = 1000

	// Repeated cleanup-wait lines sharing one raw timestamp are a single
	// event; only the first is emitted.
	cleanupToken = "WAIT_FOR_CLEANUP"
)

// Engine groups, deduplicates, and classifies raw log lines. All mutations
// are serialized behind one critical section; accessors return copies.
type Engine struct {
	mu sync.Mutex

	clock       clock.Clock
	groups      map[string]*group
	buffer      []Entry
	seen        map[string]struct{}
	cleanupSeen map[string]time.Time
	bufferSize  int
	groupMaxAge time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithBufferSize overrides the rolling entry buffer size.
func WithBufferSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.bufferSize = n
		}
	}
}

// WithGroupMaxAge overrides the bucket retention horizon.
func WithGroupMaxAge(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.groupMaxAge = d
		}
	}
}

// NewEngine creates a grouping engine with bounded in-memory state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:       clock.Real(),
		groups:      make(map[string]*group),
		seen:        make(map[string]struct{}),
		cleanupSeen: make(map[string]time.Time),
		bufferSize:  defaultBufferSize,
		groupMaxAge: defaultGroupAge,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessBatch processes one polling cycle of raw log lines and returns one
// entry per distinct (pattern, minute) bucket touched by the batch, newest
// first. Lines that fail the outer grammar are dropped silently; a
// malformed line never aborts the batch.
func (e *Engine) ProcessBatch(lines []string) []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	type touched struct {
		key   string
		order int
	}
	batchKeys := make(map[string]int)
	order := 0

	for _, line := range lines {
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rawTS, rest := m[1], m[6]

		parsed, ok := e.parseTimestamp(m[2], m[3], m[4])
		if !ok {
			continue
		}

		if strings.Contains(rest, cleanupToken) {
			if _, dup := e.cleanupSeen[rawTS]; dup {
				continue
			}
			e.cleanupSeen[rawTS] = parsed
		}

		p := pattern.Normalize(rest)
		key := p + ":" + parsed.Truncate(time.Minute).Format("200601021504")

		g, exists := e.groups[key]
		if !exists {
			g = &group{
				pattern:    p,
				firstTS:    rawTS,
				parsedTime: parsed,
			}
			e.groups[key] = g
		}
		g.count++
		g.lastTS = rawTS
		g.raw = append(g.raw, line)
		e.seen[line] = struct{}{}

		if _, dup := batchKeys[key]; !dup {
			batchKeys[key] = order
			order++
		}
	}

	keys := make([]touched, 0, len(batchKeys))
	for k, o := range batchKeys {
		keys = append(keys, touched{key: k, order: o})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].order < keys[j].order })

	entries := make([]Entry, 0, len(keys))
	for _, t := range keys {
		g := e.groups[t.key]
		entries = append(entries, e.buildEntry(g))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].parsedTime.After(entries[j].parsedTime)
	})

	// Buffer is kept oldest first; RecentEntries walks it backwards.
	for i := len(entries) - 1; i >= 0; i-- {
		e.buffer = append(e.buffer, entries[i])
	}
	if excess := len(e.buffer) - e.bufferSize; excess > 0 {
		e.buffer = e.buffer[excess:]
	}

	return entries
}

// buildEntry collapses a bucket into its display entry. The first raw line
// in the bucket is the representative.
func (e *Engine) buildEntry(g *group) Entry {
	rep := g.raw[0]
	base := rep
	if m := lineRe.FindStringSubmatch(rep); m != nil {
		base = m[6]
	}

	entry := Entry{
		Timestamp:   g.firstTS,
		Message:     base,
		Type:        common.Classify(base),
		Occurrences: g.count,
		Raw:         rep,
		parsedTime:  g.parsedTime,
	}

	switch {
	case strings.HasPrefix(g.pattern, "MJPG-streamer serving client"):
		if clients := collectClients(g.raw); len(clients) > 0 {
			entry.Details = "Clients: " + strings.Join(clients, ", ")
		}
	case strings.Contains(base, "Failed to fetch"):
		if urls := collectMatches(g.raw, fetchURLRe); len(urls) > 0 {
			entry.Details = "Failed endpoints: " + strings.Join(urls, ", ")
		}
	}

	return entry
}

// parseTimestamp builds a calendar time from the syslog-style pieces. The
// source format carries no year, so the current year is assumed; spans
// across a year boundary are not corrected.
func (e *Engine) parseTimestamp(mon, day, hms string) (time.Time, bool) {
	t, err := time.Parse("Jan 2 15:04:05", mon+" "+day+" "+hms)
	if err != nil {
		return time.Time{}, false
	}
	now := e.clock.Now()
	return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location()), true
}

// RecentEntries returns up to limit of the most recently buffered entries,
// newest first.
func (e *Engine) RecentEntries(limit int) []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if limit <= 0 || limit > len(e.buffer) {
		limit = len(e.buffer)
	}
	out := make([]Entry, limit)
	for i := 0; i < limit; i++ {
		out[i] = e.buffer[len(e.buffer)-1-i]
	}
	return out
}

// ClearOldData evicts expired buckets and caps tracking state. Intended to
// run on a timer; it takes the same lock as ProcessBatch.
func (e *Engine) ClearOldData() {
	e.mu.Lock()
	defer e.mu.Unlock()

	horizon := e.clock.Now().Add(-e.groupMaxAge)
	for key, g := range e.groups {
		if g.parsedTime.Before(horizon) {
			delete(e.groups, key)
		}
	}

	for ts, t := range e.cleanupSeen {
		if t.Before(horizon) {
			delete(e.cleanupSeen, ts)
		}
	}

	if len(e.seen) > maxSeenMessages {
		e.seen = make(map[string]struct{}, len(e.buffer))
		for _, entry := range e.buffer {
			e.seen[entry.Raw] = struct{}{}
		}
	}

	if len(e.groups) > maxGroups {
		buffered := make(map[string]struct{}, len(e.buffer))
		for _, entry := range e.buffer {
			buffered[pattern.Normalize(entry.Message)] = struct{}{}
		}
		for key, g := range e.groups {
			if _, ok := buffered[g.pattern]; !ok {
				delete(e.groups, key)
			}
		}
	}
}

// Stats reports bounded-state sizes for the ops surface.
type Stats struct {
	Groups   int `json:"groups"`
	Buffered int `json:"buffered"`
	Seen     int `json:"seen"`
}

// Stats returns current engine state sizes.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Groups: len(e.groups), Buffered: len(e.buffer), Seen: len(e.seen)}
}

// collectClients extracts the sorted, deduplicated client addresses from a
// bucket's raw MJPG-streamer lines, stripping client ports.
func collectClients(raw []string) []string {
	set := make(map[string]struct{})
	for _, line := range raw {
		token := pattern.ClientToken(line)
		if token == "" {
			continue
		}
		if pm := clientPortRe.FindStringSubmatch(token); pm != nil {
			token = pm[1]
		}
		set[token] = struct{}{}
	}
	return sortedKeys(set)
}

func collectMatches(raw []string, re *regexp.Regexp) []string {
	set := make(map[string]struct{})
	for _, line := range raw {
		if m := re.FindStringSubmatch(line); m != nil {
			set[m[1]] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
