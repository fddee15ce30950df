package printer

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// apiClient builds a client whose REST base URL points at srv.
func apiClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return NewClient(Options{
		Address:    strings.TrimPrefix(srv.URL, "http://"),
		HTTPClient: srv.Client(),
	})
}

// cameraClient builds a client whose camera URL points at srv. The camera
// URL is host plus camera port, so the test server's port becomes the
// camera port.
func cameraClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(Options{
		Address:    host,
		CameraPort: port,
		HTTPClient: srv.Client(),
	})
}

func TestSyslog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/printer/diagnostics/syslog" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("lines"); got != "50" {
			t.Errorf("lines = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`["Jun 5 14:22:01 printer01 one", "Jun 5 14:22:02 printer01 two"]`)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	lines, err := apiClient(t, srv).Syslog(context.Background(), 50)
	if err != nil {
		t.Fatalf("Syslog: %v", err)
	}
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "one") {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestSyslogUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := apiClient(t, srv).Syslog(context.Background(), 0); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/history/events" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		body := `[{"time": "2025-06-05T14:22:01Z", "type_id": 7, "message": "print started"},
			{"time": "garbage", "type_id": 8, "message": "odd clock"}]`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	events, err := apiClient(t, srv).Events(context.Background(), 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].FormattedTime != "2025-06-05 14:22:01" {
		t.Errorf("formatted time = %q", events[0].FormattedTime)
	}
	// Unparsable timestamps pass through untouched.
	if events[1].FormattedTime != "garbage" {
		t.Errorf("expected passthrough, got %q", events[1].FormattedTime)
	}
}

func TestPrintJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/history/print_jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		body := `[{
			"uuid": "abc-123",
			"name": "benchy.ufp",
			"result": "Finished",
			"datetime_started": "2025-06-05T10:00:00Z",
			"datetime_finished": "2025-06-05T12:30:05Z",
			"time_elapsed": 9005,
			"material_0_amount": 12.5,
			"printcore_0_name": "AA 0.4",
			"material_0_guid": "guid-1"
		}, {}]`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	jobs, err := apiClient(t, srv).PrintJobs(context.Background(), 0)
	if err != nil {
		t.Fatalf("PrintJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	got := jobs[0]
	if got.Name != "benchy.ufp" || got.Status != "Finished" {
		t.Errorf("unexpected job: %+v", got)
	}
	if got.Duration != "2h 30m 5s" {
		t.Errorf("duration = %q", got.Duration)
	}
	if got.StartTime != "2025-06-05 10:00:00" {
		t.Errorf("start time = %q", got.StartTime)
	}
	if got.Size != "12.5mm" {
		t.Errorf("size = %q", got.Size)
	}

	// Empty wire records render with placeholders rather than blanks.
	empty := jobs[1]
	if empty.ID != "N/A" || empty.Status != "Unknown" || empty.Duration != "N/A" || empty.StartTime != "N/A" {
		t.Errorf("unexpected empty job rendering: %+v", empty)
	}
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "stream" {
			t.Errorf("expected stream probe, got %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	status := cameraClient(t, srv).TestConnection(context.Background())
	if !status.Connected {
		t.Errorf("expected connected, got %+v", status)
	}
}

func TestTestConnectionBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	status := cameraClient(t, srv).TestConnection(context.Background())
	if status.Connected {
		t.Error("expected not connected")
	}
	if !strings.Contains(status.Message, "503") {
		t.Errorf("message should carry the status code: %q", status.Message)
	}
}

func TestTestConnectionUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	status := cameraClient(t, srv).TestConnection(context.Background())
	if status.Connected {
		t.Error("expected not connected for refused connection")
	}
	if status.Message == "" {
		t.Error("expected a transport error message")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "N/A"},
		{-5, "N/A"},
		{42, "42s"},
		{125, "2m 5s"},
		{3661, "1h 1m 1s"},
		{9005, "2h 30m 5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
