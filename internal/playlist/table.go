package playlist

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// SummaryTable renders the outcome of a playlist run.
func SummaryTable(res Result) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.SetTitle(res.Title)
	tw.AppendHeader(table.Row{"Video", "Status", "Detail"})

	for _, id := range res.Successful {
		tw.AppendRow(table.Row{id, "ok", ""})
	}
	for _, f := range res.Failed {
		tw.AppendRow(table.Row{f.VideoID, "failed", truncate(f.Error, 60)})
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d videos", res.TotalVideos),
		fmt.Sprintf("%d ok / %d failed", len(res.Successful), len(res.Failed)),
		res.OutputDir,
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
	})
	return strings.TrimRight(tw.Render(), "\n")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
