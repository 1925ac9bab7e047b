package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// OpReport summarizes the latencies of one operation.
type OpReport struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
	AvgNs int64  `json:"avg_ns" yaml:"avg_ns"`
	P50Ns int64  `json:"p50_ns" yaml:"p50_ns"`
	P99Ns int64  `json:"p99_ns" yaml:"p99_ns"`
}

// Report is the outcome of a bench run.
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Seed        int64         `json:"seed" yaml:"seed"`
	Operations  int           `json:"operations" yaml:"operations"`
	Elapsed     time.Duration `json:"elapsed_ns" yaml:"elapsed"`
	FinalLength int           `json:"final_length" yaml:"final_length"`
	TreeHeight  int           `json:"tree_height" yaml:"tree_height"`
	Verified    bool          `json:"verified" yaml:"verified"`
	Ops         []OpReport    `json:"ops" yaml:"ops"`
}

// Render writes the report to w as "table", "json", or "yaml".
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case "table":
		return r.renderTable(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}

func (r *Report) renderTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Run %s (seed %d): %s operations in %s, final length %s, tree height %d\n",
		r.RunID, r.Seed, humanize.Comma(int64(r.Operations)), r.Elapsed.Round(time.Microsecond),
		humanize.Comma(int64(r.FinalLength)), r.TreeHeight); err != nil {
		return err
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Operation", "Count", "Avg", "P50", "P99"})
	total := 0
	for _, op := range r.Ops {
		tbl.AppendRow(table.Row{
			op.Name,
			humanize.Comma(int64(op.Count)),
			time.Duration(op.AvgNs).String(),
			time.Duration(op.P50Ns).String(),
			time.Duration(op.P99Ns).String(),
		})
		total += op.Count
	}
	tbl.AppendFooter(table.Row{"Total", humanize.Comma(int64(total)), "", "", ""})
	tbl.Render()
	return nil
}
