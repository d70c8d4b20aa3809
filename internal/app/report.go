package app

import (
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/heartmarshall/medchan-backend/internal/app/pipeline"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetOutputMirror(w)
	return t
}

// RenderReport writes a per-source table of a pipeline run.
func RenderReport(w io.Writer, r pipeline.Report) {
	t := newTable(w)
	t.SetTitle(r.Job)
	t.AppendHeader(table.Row{"Source", "State", "Fetched", "Inserted", "Skipped", "Rejected", "Cursor", "Duration", "Error"})

	for _, res := range r.Results {
		errText := ""
		state := string(res.State)
		if res.Err != nil {
			errText = res.Err.Error()
			state += " at " + string(res.FailedAt)
		}
		t.AppendRow(table.Row{
			res.Source,
			state,
			res.Fetched,
			res.Inserted,
			res.Skipped,
			res.Rejected,
			cursorMove(res.CursorBefore, res.CursorAfter),
			res.Duration.Round(time.Millisecond),
			errText,
		})
	}

	total := r.Totals()
	t.AppendFooter(table.Row{"Total", "", total.Fetched, total.Inserted, total.Skipped, total.Rejected, "", r.Duration.Round(time.Millisecond), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 9, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	t.Render()
}

// RenderSummary writes a two-column table of named counters.
func RenderSummary(w io.Writer, title string, rows []table.Row) {
	t := newTable(w)
	t.SetTitle(title)
	t.AppendRows(rows)
	t.Render()
}

// SummaryRows returns the summary rows of a clean run.
func (r CleanReport) SummaryRows() []table.Row {
	return []table.Row{
		{"Output", r.Path},
		{"Files", r.Files},
		{"Rows read", r.Read},
		{"Duplicates dropped", r.Duplicates},
		{"Rows with issues", r.WithIssues},
		{"Rows written", r.Written},
	}
}

// SummaryRows returns the summary rows of a merge run.
func (r MergeReport) SummaryRows() []table.Row {
	return []table.Row{
		{"Output", r.Path},
		{"Files", r.Files},
		{"Rows", r.Rows},
		{"Duplicates dropped", r.Duplicates},
	}
}

// SummaryRows returns the summary rows of a cleaned-table load.
func (r LoadReport) SummaryRows() []table.Row {
	return []table.Row{
		{"Input", r.Path},
		{"Rows read", r.Read},
		{"Inserted", r.Inserted},
		{"Skipped", r.Skipped},
		{"Rejected", r.Rejected},
	}
}

func cursorMove(before, after int64) string {
	if before == after {
		return strconv.FormatInt(before, 10)
	}
	return strconv.FormatInt(before, 10) + " → " + strconv.FormatInt(after, 10)
}
