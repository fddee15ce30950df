package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/ultiview/printwatch/internal/config"
	"github.com/ultiview/printwatch/internal/logger"
	"github.com/ultiview/printwatch/internal/printer"
)

var jobsCount int

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show print job history from the printer",
		RunE:  runJobs,
	}
	cmd.Flags().IntVarP(&jobsCount, "count", "n", 20, "number of jobs to fetch")
	return cmd
}

func runJobs(cmd *cobra.Command, _ []string) error {
	client, err := printerClientFromConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	stop := startSpinner("Fetching print jobs...")
	jobs, err := client.PrintJobs(ctx, jobsCount)
	stop()
	if err != nil {
		return err
	}

	if outputFmt == "json" {
		return printJSON(jobs)
	}
	for _, job := range jobs {
		fmt.Printf("%-30s %-10s %s -> %s (%s, %s)\n",
			job.Name, job.Status, job.StartTime, job.EndTime, job.Duration, job.Size)
	}
	return nil
}

// printerClientFromConfig builds a one-shot client for CLI commands.
func printerClientFromConfig() (*printer.Client, error) {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if cfg.Printer.Address == "" {
		return nil, fmt.Errorf("printer address not configured (set printer.address or PRINTWATCH_PRINTER_ADDRESS)")
	}
	log := logger.NewDefault(logLevel(cfg.Logging.Level), true)
	return printer.NewClient(printer.Options{
		Address:    cfg.Printer.Address,
		CameraPort: cfg.Printer.CameraPort,
		HTTPClient: &http.Client{Timeout: cfg.Printer.Timeout},
		Logger:     log,
	}), nil
}

func startSpinner(suffix string) func() {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
