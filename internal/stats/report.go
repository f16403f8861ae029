package stats

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const lastStatusWidth = 48

// WriteSummary renders the end-of-session report: the stats line followed by
// a table of per-agent activity.
func WriteSummary(w io.Writer, snap Snapshot, tallies []Tally) error {
	if _, err := fmt.Fprintf(w, "📊 %s\n", snap); err != nil {
		return err
	}
	if len(tallies) == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
	})
	tw.AppendHeader(table.Row{"Agent", "Sent", "Received", "Statuses", "Last Status"})

	var sent, received, statuses int
	for _, t := range tallies {
		tw.AppendRow(table.Row{string(t.Agent), t.Sent, t.Received, t.Statuses, lastStatus(t.LastStatus)})
		sent += t.Sent
		received += t.Received
		statuses += t.Statuses
	}
	tw.AppendFooter(table.Row{"Total", sent, received, statuses, ""})

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

func lastStatus(s string) string {
	if s == "" {
		return "-"
	}
	return ansi.Truncate(s, lastStatusWidth, "...")
}
