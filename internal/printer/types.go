package printer

import (
	"fmt"
	"time"
)

// Event is one controller event-log record.
type Event struct {
	Time          string   `json:"time"`
	TypeID        int      `json:"type_id"`
	Message       string   `json:"message"`
	Parameters    []string `json:"parameters,omitempty"`
	FormattedTime string   `json:"formatted_time,omitempty"`
}

// ConnectionStatus is the result of a reachability probe.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// PrintJob is a display-ready print-job history record.
type PrintJob struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Duration    string `json:"duration"`
	Size        string `json:"size"`
	LayerHeight string `json:"layer_height"`
	Material    string `json:"material"`
}

// rawPrintJob mirrors the controller's wire format.
type rawPrintJob struct {
	UUID             string  `json:"uuid"`
	Name             string  `json:"name"`
	Result           string  `json:"result"`
	DatetimeStarted  string  `json:"datetime_started"`
	DatetimeFinished string  `json:"datetime_finished"`
	TimeElapsed      float64 `json:"time_elapsed"`
	Material0Amount  float64 `json:"material_0_amount"`
	PrintCore0Name   string  `json:"printcore_0_name"`
	Material0GUID    string  `json:"material_0_guid"`
}

func (r rawPrintJob) format() PrintJob {
	job := PrintJob{
		ID:          orNA(r.UUID),
		Name:        orNA(r.Name),
		Status:      r.Result,
		StartTime:   formatJobTime(r.DatetimeStarted),
		EndTime:     formatJobTime(r.DatetimeFinished),
		Duration:    FormatDuration(r.TimeElapsed),
		Size:        "N/A",
		LayerHeight: orNA(r.PrintCore0Name),
		Material:    orNA(r.Material0GUID),
	}
	if job.Status == "" {
		job.Status = "Unknown"
	}
	if r.Material0Amount > 0 {
		job.Size = fmt.Sprintf("%gmm", r.Material0Amount)
	}
	return job
}

// formatEventTime renders a controller ISO timestamp in display form,
// passing unparsable values through unchanged.
func formatEventTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatJobTime(ts string) string {
	if ts == "" {
		return "N/A"
	}
	return formatEventTime(ts)
}

// FormatDuration renders a duration in seconds as a compact human string.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "N/A"
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
