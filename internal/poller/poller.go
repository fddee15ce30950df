// Package poller drives the periodic cycle: fetch a raw syslog batch from
// the controller, feed the grouping engine, promote warning/error entries
// to alert candidates, and run bounded-state cleanup on a slower timer.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/common"
	"github.com/ultiview/printwatch/internal/grouping"
	"github.com/ultiview/printwatch/internal/metrics"
)

// LogSource supplies raw log-line batches, already fetched; the engines
// never block on I/O inside their critical sections. Configured reports
// whether a controller address is set; it may change at runtime via the
// config-update endpoint.
type LogSource interface {
	Syslog(ctx context.Context, count int) ([]string, error)
	Configured() bool
}

const connectivityAlertKey = "printer-connection"

// Poller owns the fetch/process/cleanup cycle.
type Poller struct {
	source LogSource
	groups *grouping.Engine
	alerts *alerting.Service
	log    zerolog.Logger

	interval        time.Duration
	cleanupInterval time.Duration
	batchSize       int
	alertMaxAge     time.Duration

	warnedUnconfigured bool
}

// Config configures a Poller.
type Config struct {
	Interval        time.Duration
	CleanupInterval time.Duration
	BatchSize       int
	AlertMaxAge     time.Duration
}

// New creates a poller over the given source and engines.
func New(source LogSource, groups *grouping.Engine, alerts *alerting.Service, cfg Config, log zerolog.Logger) *Poller {
	return &Poller{
		source:          source,
		groups:          groups,
		alerts:          alerts,
		log:             log,
		interval:        cfg.Interval,
		cleanupInterval: cfg.CleanupInterval,
		batchSize:       cfg.BatchSize,
		alertMaxAge:     cfg.AlertMaxAge,
	}
}

// Run polls until ctx is canceled. Cleanup runs on its own ticker and takes
// the same engine locks as processing, so the two may interleave safely.
func (p *Poller) Run(ctx context.Context) error {
	poll := time.NewTicker(p.interval)
	defer poll.Stop()

	cleanup := time.NewTicker(p.cleanupInterval)
	defer cleanup.Stop()

	p.log.Info().
		Dur("interval", p.interval).
		Dur("cleanup_interval", p.cleanupInterval).
		Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller stopped")
			return nil
		case <-poll.C:
			p.cycle(ctx)
		case <-cleanup.C:
			p.groups.ClearOldData()
			p.alerts.ClearOld(p.alertMaxAge)
			p.log.Debug().Msg("cleanup pass complete")
		}
	}
}

// cycle runs one fetch/process pass. While no controller address is
// configured the cycle is a no-op; failing every second against an empty
// address would only churn the error counter and the connectivity alert.
func (p *Poller) cycle(ctx context.Context) {
	if !p.source.Configured() {
		if !p.warnedUnconfigured {
			p.warnedUnconfigured = true
			p.log.Info().Msg("printer address not configured; polling paused")
		}
		return
	}
	p.warnedUnconfigured = false

	lines, err := p.source.Syslog(ctx, p.batchSize)
	if err != nil {
		metrics.PollErrors.Inc()
		p.log.Warn().Err(err).Msg("syslog fetch failed")
		p.alerts.SetLocal(connectivityAlertKey, alerting.Candidate{
			Type:    common.SeverityWarning,
			Message: "Printer connection lost",
			Details: &alerting.Details{RawMessage: err.Error()},
		})
		return
	}
	p.alerts.ClearLocal(connectivityAlertKey)

	entries := p.groups.ProcessBatch(lines)
	metrics.LinesProcessed.Add(float64(len(lines)))
	metrics.EntriesEmitted.Add(float64(len(entries)))

	before := p.alerts.ActiveCount()
	for _, entry := range entries {
		if entry.Type == common.SeverityInfo {
			continue
		}
		p.alerts.Process(alerting.Candidate{
			Type:    entry.Type,
			Message: entry.Message,
			Details: &alerting.Details{
				Timestamp:  entry.Timestamp,
				RawMessage: entry.Raw,
			},
		})
	}
	after := p.alerts.ActiveCount()
	if after > before {
		metrics.AlertsCreated.Add(float64(after - before))
	}
	metrics.AlertsActive.Set(float64(after))
}
