package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var eventsCount int

func newEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the printer's event log",
		RunE:  runEvents,
	}
	cmd.Flags().IntVarP(&eventsCount, "count", "n", 50, "number of events to fetch")
	return cmd
}

func runEvents(cmd *cobra.Command, _ []string) error {
	client, err := printerClientFromConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	stop := startSpinner("Fetching events...")
	events, err := client.Events(ctx, eventsCount)
	stop()
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		return printJSON(events)
	}
	for _, ev := range events {
		ts := ev.FormattedTime
		if ts == "" {
			ts = ev.Time
		}
		fmt.Printf("%s  %s\n", ts, ev.Message)
	}
	return nil
}
