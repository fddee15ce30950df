package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/go-logparser"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/common"
	"github.com/ultiview/printwatch/internal/formatter"
	"github.com/ultiview/printwatch/internal/grouping"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch a controller log file for real-time grouping and alerts",
		Long: `Follow a controller syslog file and process new lines as they are written.

Lines in the controller's syslog shape are grouped and deduplicated; files in
other formats fall back to auto-detected parsing, and warning/error entries
are tracked as alerts. Press Ctrl+C to stop watching.

Examples:
  printwatch watch /var/log/printer.log
  printwatch watch -o json messages.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
}

type watchSession struct {
	groups   *grouping.Engine
	alerts   *alerting.Service
	format   formatter.Formatter
	fallback logparser.Parser
}

func runWatch(_ *cobra.Command, args []string) error {
	filename := args[0]

	file, err := os.Open(filename) // #nosec G304 -- operator-supplied log path
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer closeQuietly(file)

	// Start from the end; only new lines are processed.
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer closeQuietly(watcher)

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	session := &watchSession{
		groups: grouping.NewEngine(),
		alerts: alerting.NewService(),
		format: formatter.New(outputFmt),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", filename)

	for {
		select {
		case <-sigCh:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := session.processNewLines(file); err != nil && isVerbose() {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Warning: watcher error: %v\n", err)
			}
		}
	}
}

func (ws *watchSession) processNewLines(file *os.File) error {
	scanner := bufio.NewScanner(file)

	var lines []string
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	entries := ws.groups.ProcessBatch(lines)
	if len(entries) == 0 {
		// Not the controller's syslog shape; auto-detect the format and
		// track warning/error entries as alerts anyway.
		return ws.processGeneric(lines)
	}

	out, err := ws.format.FormatEntries(entries)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)

	for _, entry := range entries {
		if entry.Type == common.SeverityInfo {
			continue
		}
		ws.trackAlert(alerting.Candidate{
			Type:    entry.Type,
			Message: entry.Message,
			Details: &alerting.Details{Timestamp: entry.Timestamp, RawMessage: entry.Raw},
		})
	}
	return nil
}

func (ws *watchSession) processGeneric(lines []string) error {
	if ws.fallback == nil {
		ws.fallback = logparser.New()
	}

	parsed, err := ws.fallback.ParseString(strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("failed to parse lines: %w", err)
	}

	for i := range parsed {
		severity := common.ParseSeverity(parsed[i].Level)
		if severity == common.SeverityInfo {
			continue
		}
		fmt.Printf("[%s] %s: %s\n", parsed[i].Timestamp.Format("15:04:05"), strings.ToUpper(string(severity)), parsed[i].Message)
		ws.trackAlert(alerting.Candidate{
			Type:    severity,
			Message: parsed[i].Message,
			Details: &alerting.Details{RawMessage: parsed[i].Message},
		})
	}
	return nil
}

func (ws *watchSession) trackAlert(c alerting.Candidate) {
	alert := ws.alerts.Process(c)
	if alert == nil || alert.Occurrences > 1 {
		return
	}
	out, err := ws.format.FormatAlerts([]alerting.Alert{*alert})
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, "ALERT "+string(out))
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: close failed: %v\n", err)
	}
}
