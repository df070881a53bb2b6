package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rustyeddy/portfolio/aggregate"
	"github.com/rustyeddy/portfolio/market"
)

// Format selects how a report is written.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Formats lists the accepted formats.
var Formats = []Format{FormatTable, FormatMarkdown, FormatJSON, FormatCSV}

// ParseFormat validates a format name. The empty string means FormatTable.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTable, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of table, markdown, json, csv)", s)
}

// Renderer writes reports in one format.
type Renderer struct {
	Format   Format
	Currency string
	Location *time.Location
	// Width wraps table output; 0 keeps the renderer default.
	Width int
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r Renderer) markdown(w io.Writer, md string) error {
	if r.Format == FormatMarkdown {
		_, err := io.WriteString(w, md)
		return err
	}

	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// History writes account histories. JSON output is the list of histories;
// the benchmark only appears in the table and markdown formats.
func (r Renderer) History(w io.Writer, period market.Period, histories []aggregate.AccountHistory, bench *market.BenchmarkSeries) error {
	switch r.Format {
	case FormatJSON:
		return WriteJSON(w, histories)
	case FormatCSV:
		return WriteHistoryCSV(w, histories)
	default:
		return r.markdown(w, HistoryMarkdown(period, histories, bench, r.Currency))
	}
}

// Summaries writes account summaries.
func (r Renderer) Summaries(w io.Writer, summaries []aggregate.AccountSummary) error {
	switch r.Format {
	case FormatJSON:
		return WriteJSON(w, summaries)
	case FormatCSV:
		return WriteSummaryCSV(w, summaries)
	default:
		return r.markdown(w, SummaryMarkdown(summaries, r.Currency))
	}
}

// Risk writes a risk rollup. CSV output lists the positions only.
func (r Renderer) Risk(w io.Writer, rollup aggregate.RiskRollup) error {
	switch r.Format {
	case FormatJSON:
		return WriteJSON(w, rollup)
	case FormatCSV:
		return WritePositionsCSV(w, rollup.Positions)
	default:
		return r.markdown(w, RiskMarkdown(rollup, r.Currency))
	}
}

// Benchmark writes a benchmark series. An absent benchmark is JSON null.
func (r Renderer) Benchmark(w io.Writer, bench *market.BenchmarkSeries) error {
	switch r.Format {
	case FormatJSON:
		return WriteJSON(w, bench)
	case FormatCSV:
		return WriteBenchmarkCSV(w, bench)
	default:
		return r.markdown(w, BenchmarkMarkdown(bench, r.Location))
	}
}
