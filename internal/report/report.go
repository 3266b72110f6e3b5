// Package report renders pair scores for people and for other programs.
//
// The csv format is one line per pair, "score,nameA,nameB", with the score
// printed to five decimal places. The table format is a rounded go-pretty
// table. The json format is an array of objects.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"simscan/internal/domain"
	"simscan/internal/explain"
	"simscan/internal/resultstore"
)

// Format names.
const (
	FormatAuto  = "auto"
	FormatCSV   = "csv"
	FormatTable = "table"
	FormatJSON  = "json"
)

// Options select and shape the rendered pairs.
type Options struct {
	Format string
	// Top keeps the k best pairs. Zero keeps all.
	Top int
	// MinScore drops pairs scoring below it when set.
	MinScore *float64
	// Explain attaches up to this many shared terms to each pair.
	Explain int
}

// Explainer resolves the shared terms behind a pair.
type Explainer interface {
	Explain(a, b string, limit int) ([]domain.Contribution, error)
}

// Entry is one rendered pair.
type Entry struct {
	Score float64               `json:"score"`
	A     string                `json:"a"`
	B     string                `json:"b"`
	Terms []domain.Contribution `json:"terms,omitempty"`
}

// Select applies the threshold and top-k options. Without a top-k limit
// the input order is preserved; with one, pairs are ranked by score.
func Select(pairs []domain.Pair, opts Options) []domain.Pair {
	out := make([]domain.Pair, 0, len(pairs))
	for _, p := range pairs {
		if opts.MinScore != nil && p.Score < *opts.MinScore {
			continue
		}
		out = append(out, p)
	}
	if opts.Top > 0 {
		resultstore.SortDesc(out)
		out = resultstore.Limit(out, opts.Top)
	}
	return out
}

// Write renders pairs to w.
func Write(w io.Writer, pairs []domain.Pair, opts Options, ex Explainer) error {
	entries, err := buildEntries(Select(pairs, opts), opts.Explain, ex)
	if err != nil {
		return err
	}
	format := ResolveFormat(opts.Format, w)
	switch format {
	case FormatCSV:
		return writeCSV(w, entries)
	case FormatTable:
		_, err := fmt.Fprintln(w, renderTable(entries))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}

// ResolveFormat turns "auto" into table on a terminal and csv elsewhere.
func ResolveFormat(format string, w io.Writer) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatAuto && format != "" {
		return format
	}
	if isTerminal(w) {
		return FormatTable
	}
	return FormatCSV
}

// FormatScore prints a score the way the csv format does.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 5, 64)
}

func buildEntries(pairs []domain.Pair, limit int, ex Explainer) ([]Entry, error) {
	entries := make([]Entry, len(pairs))
	for i, p := range pairs {
		entries[i] = Entry{Score: p.Score, A: p.A, B: p.B}
		if limit <= 0 || ex == nil {
			continue
		}
		terms, err := ex.Explain(p.A, p.B, limit)
		if err != nil {
			return nil, fmt.Errorf("explain %s/%s: %w", p.A, p.B, err)
		}
		entries[i].Terms = terms
	}
	return entries, nil
}

func writeCSV(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		line := FormatScore(e.Score) + "," + e.A + "," + e.B
		if len(e.Terms) > 0 {
			line += "," + strings.Join(explain.Terms(e.Terms), " ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(entries []Entry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	withTerms := false
	for _, e := range entries {
		if len(e.Terms) > 0 {
			withTerms = true
			break
		}
	}
	header := table.Row{"Score", "Group A", "Group B"}
	if withTerms {
		header = append(header, "Shared terms")
	}
	tw.AppendHeader(header)
	for _, e := range entries {
		row := table.Row{FormatScore(e.Score), e.A, e.B}
		if withTerms {
			row = append(row, strings.Join(explain.Terms(e.Terms), ", "))
		}
		tw.AppendRow(row)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
