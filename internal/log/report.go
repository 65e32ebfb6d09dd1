package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type ItemReport struct {
	Path       string         `json:"path"`
	Outcome    string         `json:"outcome"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	ElapsedMS  int64          `json:"elapsed_ms"`
	Operations []OperationLog `json:"operations"`
}

type ReportMetadata struct {
	CommandArgs    []string  `json:"command_args"`
	Root           string    `json:"root"`
	DryRun         bool      `json:"dry_run"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"session_id"`
	DurationMS     int64     `json:"duration_ms"`
	TotalItems     int       `json:"total_items"`
	SucceededItems int       `json:"succeeded_items"`
	FailedItems    int       `json:"failed_items"`
	TotalOps       int       `json:"total_operations"`
	SuccessfulOps  int       `json:"successful_operations"`
	FailedOps      int       `json:"failed_operations"`
}

// Report is the JSON summary of one batch run.
type Report struct {
	Metadata ReportMetadata `json:"metadata"`
	Items    []ItemReport   `json:"items"`
}

// NewSessionID formats a sortable id for a run started at now.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000)
}

// UpdateStats recomputes the item and operation counters.
func (r *Report) UpdateStats() {
	if r == nil {
		return
	}
	var okItems, failedItems, okOps, failedOps, total int
	for _, item := range r.Items {
		if item.Success {
			okItems++
		} else {
			failedItems++
		}
		for _, op := range item.Operations {
			total++
			if op.Success {
				okOps++
			} else {
				failedOps++
			}
		}
	}
	r.Metadata.TotalItems = len(r.Items)
	r.Metadata.SucceededItems = okItems
	r.Metadata.FailedItems = failedItems
	r.Metadata.TotalOps = total
	r.Metadata.SuccessfulOps = okOps
	r.Metadata.FailedOps = failedOps
}

func WriteReport(path string, report *Report) error {
	if report == nil {
		return nil
	}
	report.UpdateStats()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
