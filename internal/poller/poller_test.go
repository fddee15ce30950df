package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/clock"
	"github.com/ultiview/printwatch/internal/common"
	"github.com/ultiview/printwatch/internal/grouping"
)

type fakeSource struct {
	lines        []string
	err          error
	calls        int
	unconfigured bool
}

func (f *fakeSource) Syslog(ctx context.Context, count int) ([]string, error) {
	f.calls++
	return f.lines, f.err
}

func (f *fakeSource) Configured() bool { return !f.unconfigured }

func newTestPoller(source LogSource) (*Poller, *grouping.Engine, *alerting.Service) {
	fake := clock.NewFake(time.Date(2025, time.June, 5, 15, 0, 0, 0, time.UTC))
	groups := grouping.NewEngine(grouping.WithClock(fake))
	alerts := alerting.NewService(alerting.WithClock(fake))
	p := New(source, groups, alerts, Config{
		Interval:        time.Second,
		CleanupInterval: 5 * time.Minute,
		BatchSize:       500,
		AlertMaxAge:     24 * time.Hour,
	}, zerolog.Nop())
	return p, groups, alerts
}

func TestCycleProcessesBatchAndPromotesAlerts(t *testing.T) {
	source := &fakeSource{lines: []string{
		"Jun 5 14:22:01 printer01 PrintCore 0 extruded 12.3 mm in 1.1 s, remaining length = 800 mm",
		"Jun 5 14:22:02 printer01 PrinterService[99]:ERROR - heater fault",
	}}
	p, groups, alerts := newTestPoller(source)

	p.cycle(context.Background())

	if got := groups.Stats().Buffered; got != 2 {
		t.Errorf("expected 2 buffered entries, got %d", got)
	}

	active := alerts.Active()
	if len(active) != 1 {
		t.Fatalf("expected 1 alert from the error line, got %d", len(active))
	}
	if active[0].Type != common.SeverityError {
		t.Errorf("alert type = %s", active[0].Type)
	}
	if active[0].Details == nil || active[0].Details.RawMessage == "" {
		t.Errorf("alert must carry the raw line: %+v", active[0].Details)
	}
}

func TestCycleInfoEntriesAreNotAlerts(t *testing.T) {
	source := &fakeSource{lines: []string{
		"Jun 5 14:22:01 printer01 Build Complete",
	}}
	p, _, alerts := newTestPoller(source)

	p.cycle(context.Background())

	if alerts.ActiveCount() != 0 {
		t.Errorf("info entries must not raise alerts, got %d active", alerts.ActiveCount())
	}
}

func TestCycleFetchFailureRaisesConnectivityAlert(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	p, _, alerts := newTestPoller(source)

	p.cycle(context.Background())

	active := alerts.Active()
	if len(active) != 1 {
		t.Fatalf("expected a connectivity alert, got %d", len(active))
	}
	if active[0].ID != "local-printer-connection" {
		t.Errorf("unexpected alert id: %q", active[0].ID)
	}
	if active[0].Message != "Printer connection lost" {
		t.Errorf("unexpected message: %q", active[0].Message)
	}

	// Recovery clears the connectivity alert.
	source.err = nil
	source.lines = nil
	p.cycle(context.Background())
	if alerts.ActiveCount() != 0 {
		t.Errorf("connectivity alert must clear on recovery, got %d active", alerts.ActiveCount())
	}
}

func TestCycleSkipsWhileUnconfigured(t *testing.T) {
	source := &fakeSource{unconfigured: true, err: errors.New("should not be reached")}
	p, _, alerts := newTestPoller(source)

	p.cycle(context.Background())
	p.cycle(context.Background())

	if source.calls != 0 {
		t.Errorf("expected no fetches without an address, got %d", source.calls)
	}
	if alerts.ActiveCount() != 0 {
		t.Errorf("an unconfigured address must not raise connectivity alerts, got %d active", alerts.ActiveCount())
	}

	// Once an address is configured, polling resumes.
	source.unconfigured = false
	source.err = nil
	p.cycle(context.Background())
	if source.calls != 1 {
		t.Errorf("expected polling to resume once configured, got %d fetches", source.calls)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	source := &fakeSource{}
	p, _, _ := newTestPoller(source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
