package batch

import (
	"github.com/Digital-Shane/library-tidy/internal/log"
)

// Report converts the summary into the JSON run report.
func (s Summary) Report(args []string) *log.Report {
	report := &log.Report{
		Metadata: log.ReportMetadata{
			CommandArgs: args,
			Root:        s.Root,
			DryRun:      s.DryRun,
			Timestamp:   s.Started,
			SessionID:   log.NewSessionID(s.Started),
			DurationMS:  s.Elapsed().Milliseconds(),
		},
		Items: make([]log.ItemReport, 0, len(s.Results)),
	}
	for _, res := range s.Results {
		item := log.ItemReport{
			Path:       res.Path,
			Outcome:    res.Outcome.String(),
			Success:    res.Succeeded(),
			ElapsedMS:  res.Elapsed.Milliseconds(),
			Operations: res.Operations,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		report.Items = append(report.Items, item)
	}
	report.UpdateStats()
	return report
}
