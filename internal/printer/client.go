// Package printer is a thin client for the printer controller's REST API.
// It fetches raw syslog batches, event history, and print-job history; the
// core engines never talk to the network themselves.
package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Client talks to one printer controller.
type Client struct {
	address   string
	baseURL   string
	cameraURL string
	http      *http.Client
	log       zerolog.Logger
}

// Options configures a Client.
type Options struct {
	Address    string // controller host or IP
	CameraPort int
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// NewClient creates a client for the controller at opts.Address.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cameraPort := opts.CameraPort
	if cameraPort == 0 {
		cameraPort = 8080
	}
	return &Client{
		address:   opts.Address,
		baseURL:   fmt.Sprintf("http://%s/api/v1", opts.Address),
		cameraURL: fmt.Sprintf("http://%s:%d/?action=stream", opts.Address, cameraPort),
		http:      httpClient,
		log:       opts.Logger,
	}
}

// Configured reports whether the client has a controller address to talk to.
func (c *Client) Configured() bool { return c.address != "" }

// Syslog fetches up to count raw system log lines from the controller.
func (c *Client) Syslog(ctx context.Context, count int) ([]string, error) {
	url := c.baseURL + "/printer/diagnostics/syslog"
	if count > 0 {
		url += "?lines=" + strconv.Itoa(count)
	}

	var lines []string
	if err := c.getJSON(ctx, url, &lines); err != nil {
		return nil, fmt.Errorf("fetching syslog: %w", err)
	}
	return lines, nil
}

// Events fetches controller event history, newest first.
func (c *Client) Events(ctx context.Context, count int) ([]Event, error) {
	url := c.baseURL + "/history/events"
	if count > 0 {
		url += "?count=" + strconv.Itoa(count)
	}

	var events []Event
	if err := c.getJSON(ctx, url, &events); err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	for i := range events {
		events[i].FormattedTime = formatEventTime(events[i].Time)
	}
	return events, nil
}

// PrintJobs fetches print-job history mapped to display fields.
func (c *Client) PrintJobs(ctx context.Context, count int) ([]PrintJob, error) {
	url := c.baseURL + "/history/print_jobs"
	if count > 0 {
		url += "?count=" + strconv.Itoa(count)
	}

	var raw []rawPrintJob
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("fetching print jobs: %w", err)
	}

	jobs := make([]PrintJob, len(raw))
	for i, r := range raw {
		jobs[i] = r.format()
	}
	return jobs, nil
}

// TestConnection probes the controller's camera stream to check
// reachability. A non-200 status is reported as an error message, not a Go
// error; only transport failures return an error.
func (c *Client) TestConnection(ctx context.Context) ConnectionStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cameraURL, nil)
	if err != nil {
		return ConnectionStatus{Connected: false, Message: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ConnectionStatus{Connected: false, Message: err.Error()}
	}
	defer closeBody(resp.Body, c.log)

	if resp.StatusCode != http.StatusOK {
		return ConnectionStatus{
			Connected: false,
			Message:   fmt.Sprintf("printer responded with status %d", resp.StatusCode),
		}
	}
	return ConnectionStatus{Connected: true, Message: "connected to printer"}
}

// CameraStreamURL returns the MJPG-streamer URL for UI redirects.
func (c *Client) CameraStreamURL() string { return c.cameraURL }

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body, c.log)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func closeBody(body io.ReadCloser, log zerolog.Logger) {
	if err := body.Close(); err != nil {
		log.Debug().Err(err).Msg("closing response body")
	}
}
