// Package alerting maintains the lifecycle of deduplicated alerts derived
// from warning/error log entries: create, update, resolve, expire. Alert
// identity is a content hash over the normalized message, so semantically
// identical alerts collapse into one even as timestamps and ids vary.
package alerting

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/ultiview/printwatch/internal/clock"
	"github.com/ultiview/printwatch/internal/common"
	"github.com/ultiview/printwatch/internal/pattern"
)

// Details is the opaque structured payload attached to an alert.
type Details struct {
	Timestamp  string `json:"timestamp,omitempty"`
	RawMessage string `json:"raw_message,omitempty"`
}

// Candidate is an incoming alert before identity assignment.
type Candidate struct {
	Type    common.Severity `json:"type"`
	Message string          `json:"message"`
	Details *Details        `json:"details,omitempty"`
}

// Alert is a lifecycle-managed alert.
type Alert struct {
	ID          string          `json:"id"`
	Type        common.Severity `json:"type"`
	Message     string          `json:"message"`
	Details     *Details        `json:"details,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	Resolved    bool            `json:"resolved,omitempty"`
	Occurrences int             `json:"occurrence_count"`
}

const (
	defaultHistorySize = 1000

	// Re-arrival of an alert within this window after its update or
	// resolution is treated as already handled.
	suppressionWindow = 60 * time.Second
)

// Service owns active alerts, locally injected alerts, and a bounded
// history log. All mutating operations share one critical section.
type Service struct {
	mu sync.Mutex

	clock       clock.Clock
	active      map[string]*Alert
	local       map[string]*Alert
	history     []Alert
	historySize int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithHistorySize overrides the bounded history length.
func WithHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// NewService creates an alert service with bounded in-memory state.
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:       clock.Real(),
		active:      make(map[string]*Alert),
		local:       make(map[string]*Alert),
		historySize: defaultHistorySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID computes the content-derived stable identity for a candidate. The raw
// message, when present, is preferred over the display message so that a
// reworded display string does not split identity.
func ID(c Candidate) string {
	msg := c.Message
	if c.Details != nil && c.Details.RawMessage != "" {
		msg = c.Details.RawMessage
	}
	sum := sha256.Sum256([]byte(string(c.Type) + "-" + pattern.NormalizeAlert(msg)))
	return hex.EncodeToString(sum[:16])
}

// Process ingests a candidate and returns the resulting alert state, or nil
// when the candidate is suppressed because an equivalent alert was resolved
// within the last minute.
func (s *Service) Process(c Candidate) *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ID(c)
	now := s.clock.Now()

	if s.recentlyResolvedLocked(id, now) {
		return nil
	}

	if existing, ok := s.active[id]; ok {
		// Rapid repeated polling must not inflate the count; only bump
		// once the update window has elapsed.
		if now.Sub(existing.UpdatedAt) > suppressionWindow {
			existing.UpdatedAt = now
			existing.Occurrences++
			if c.Details != nil {
				existing.Details = c.Details
			}
		}
		return copyAlert(existing)
	}

	alert := &Alert{
		ID:          id,
		Type:        c.Type,
		Message:     c.Message,
		Details:     c.Details,
		CreatedAt:   now,
		UpdatedAt:   now,
		Occurrences: 1,
	}
	s.active[id] = alert
	s.appendHistoryLocked(*alert)

	return copyAlert(alert)
}

// Resolve moves an active alert into history with a resolved snapshot and
// returns that snapshot, or nil when the id is unknown.
func (s *Service) Resolve(id string) *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.active[id]
	if !ok {
		return nil
	}

	now := s.clock.Now()
	alert.ResolvedAt = &now
	alert.Resolved = true
	s.appendHistoryLocked(*alert)
	delete(s.active, id)

	return copyAlert(alert)
}

// Active returns the active alerts unioned with locally injected alerts.
func (s *Service) Active() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, 0, len(s.active)+len(s.local))
	for _, a := range s.active {
		out = append(out, *a)
	}
	for _, a := range s.local {
		out = append(out, *a)
	}
	return out
}

// History returns up to limit of the most recently appended history
// records, oldest of those first.
func (s *Service) History(limit int) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]Alert, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}

// ClearOld drops active alerts whose last update exceeds maxAge, and
// history and local alerts whose creation exceeds maxAge.
func (s *Service) ClearOld(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	horizon := s.clock.Now().Add(-maxAge)

	for id, a := range s.active {
		if a.UpdatedAt.Before(horizon) {
			delete(s.active, id)
		}
	}

	kept := s.history[:0]
	for _, a := range s.history {
		if !a.CreatedAt.Before(horizon) {
			kept = append(kept, a)
		}
	}
	s.history = kept

	for key, a := range s.local {
		if a.CreatedAt.Before(horizon) {
			delete(s.local, key)
		}
	}
}

// SetLocal injects or refreshes a locally originated alert (for example a
// printer connectivity warning raised by the poller rather than by the log
// stream). Local alerts bypass identity hashing and live under the caller's
// key.
func (s *Service) SetLocal(key string, c Candidate) Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if existing, ok := s.local[key]; ok {
		existing.Type = c.Type
		existing.Message = c.Message
		existing.Details = c.Details
		existing.UpdatedAt = now
		return *existing
	}

	alert := &Alert{
		ID:          "local-" + key,
		Type:        c.Type,
		Message:     c.Message,
		Details:     c.Details,
		CreatedAt:   now,
		UpdatedAt:   now,
		Occurrences: 1,
	}
	s.local[key] = alert
	return *alert
}

// ClearLocal removes a locally originated alert.
func (s *Service) ClearLocal(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.local, key)
}

// ActiveCount returns the number of active alerts, local included.
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active) + len(s.local)
}

// recentlyResolvedLocked reports whether an alert with this id was resolved
// within the suppression window. Prevents resolve/reopen flapping.
func (s *Service) recentlyResolvedLocked(id string, now time.Time) bool {
	for i := len(s.history) - 1; i >= 0; i-- {
		a := s.history[i]
		if a.ID != id || !a.Resolved || a.ResolvedAt == nil {
			continue
		}
		if now.Sub(*a.ResolvedAt) < suppressionWindow {
			return true
		}
	}
	return false
}

func (s *Service) appendHistoryLocked(a Alert) {
	s.history = append(s.history, a)
	if excess := len(s.history) - s.historySize; excess > 0 {
		s.history = s.history[excess:]
	}
}

func copyAlert(a *Alert) *Alert {
	cp := *a
	return &cp
}
