package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/batch"
	"github.com/Digital-Shane/library-tidy/internal/tui/theme"
	"github.com/mattn/go-runewidth"
)

// maxNameWidth caps the item column; longer folder names are truncated.
const maxNameWidth = 60

// printSummary writes one row per item that did not stay compliant, then
// the totals. Columns are aligned by display width so wide titles line up.
func printSummary(w io.Writer, s batch.Summary, th theme.Theme) {
	type row struct {
		icon, name, outcome, detail string
	}

	var rows []row
	for _, res := range s.Results {
		failed := !res.Succeeded()
		outcome := res.Outcome.String()
		if !failed && outcome == "compliant" {
			continue
		}
		r := row{
			icon:    th.OutcomeIcon(res.Outcome, failed),
			name:    runewidth.Truncate(filepath.Base(res.Path), maxNameWidth, "…"),
			outcome: outcome,
		}
		if failed {
			r.detail = res.Err.Error()
		}
		rows = append(rows, r)
	}

	iconWidth, nameWidth, outcomeWidth := 0, len("Item"), len("Outcome")
	for _, r := range rows {
		iconWidth = max(iconWidth, runewidth.StringWidth(r.icon))
		nameWidth = max(nameWidth, runewidth.StringWidth(r.name))
		outcomeWidth = max(outcomeWidth, runewidth.StringWidth(r.outcome))
	}

	if len(rows) > 0 {
		fmt.Fprintf(w, "\n%s  %s  %s\n",
			runewidth.FillRight("", iconWidth),
			runewidth.FillRight("Item", nameWidth),
			"Outcome")
		fmt.Fprintln(w, strings.Repeat("-", iconWidth+nameWidth+outcomeWidth+4))
		for _, r := range rows {
			line := fmt.Sprintf("%s  %s  %s",
				runewidth.FillRight(r.icon, iconWidth),
				runewidth.FillRight(r.name, nameWidth),
				runewidth.FillRight(r.outcome, outcomeWidth))
			if r.detail != "" {
				line += "  " + r.detail
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}

	verb := "fixed"
	if s.DryRun {
		verb = "planned"
	}
	fmt.Fprintf(w, "\n%s %d items: %d %s, %d compliant, %d skipped, %d failed (%s)\n",
		th.Icon("stats"), s.Total, s.Fixed, verb,
		s.Succeeded-s.Fixed-s.Skipped, s.Skipped, s.Failed,
		s.Elapsed().Round(time.Millisecond))
}
