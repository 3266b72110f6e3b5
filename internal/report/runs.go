package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"simscan/internal/domain"
)

type runEntry struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Groups    int       `json:"groups"`
	StartedAt time.Time `json:"started_at"`
}

// WriteRuns renders stored runs. The csv line is "id,started_at,groups,root".
func WriteRuns(w io.Writer, runs []domain.Run, format string) error {
	switch ResolveFormat(format, w) {
	case FormatCSV:
		for _, r := range runs {
			line := r.ID + "," + r.StartedAt.UTC().Format(time.RFC3339) + "," +
				strconv.Itoa(r.Groups) + "," + r.Root
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	case FormatTable:
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Run", "Started", "Groups", "Root"})
		for _, r := range runs {
			tw.AppendRow(table.Row{r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Groups, r.Root})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		})
		_, err := fmt.Fprintln(w, tw.Render())
		return err
	case FormatJSON:
		entries := make([]runEntry, len(runs))
		for i, r := range runs {
			entries[i] = runEntry{ID: r.ID, Root: r.Root, Groups: r.Groups, StartedAt: r.StartedAt}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
